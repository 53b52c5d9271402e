package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"genquiz-service/internal/app"
	"genquiz-service/internal/config"
	"genquiz-service/internal/domain"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	topic      string
	count      int
	kind       string
	difficulty string
	source     string
	timerMode  string
	timeValue  int
}

// NewGenerateCmd generates questions and saves them as a draft session.
func NewGenerateCmd(configPath *string) *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a draft quiz or poll from a topic or source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *configPath, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.topic, "topic", "", "topic to generate questions about")
	cmd.Flags().IntVar(&opts.count, "count", 5, "number of questions")
	cmd.Flags().StringVar(&opts.kind, "type", string(domain.SessionTypeQuiz), "QUIZ or POLL")
	cmd.Flags().StringVar(&opts.difficulty, "difficulty", string(domain.DifficultyMedium), "Easy, Medium, Hard or Very Hard (quizzes only)")
	cmd.Flags().StringVar(&opts.source, "source", "", "text, PDF or image file to draw the questions from")
	cmd.Flags().StringVar(&opts.timerMode, "timer", string(domain.TimerPerQuestion), "PER_QUESTION, WHOLE_QUIZ or NONE")
	cmd.Flags().IntVar(&opts.timeValue, "time", 0, "timer seconds (defaults to 30 per question or 300 for the whole quiz)")
	return cmd
}

func runGenerate(ctx context.Context, configPath string, opts generateOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	in := app.WizardInput{
		GenerateRequest: app.GenerateRequest{
			Topic:      opts.topic,
			Count:      opts.count,
			Type:       domain.SessionType(strings.ToUpper(opts.kind)),
			Difficulty: domain.Difficulty(opts.difficulty),
		},
		TimerMode: domain.TimerMode(strings.ToUpper(opts.timerMode)),
		TimeValue: opts.timeValue,
	}
	if !in.Type.Valid() {
		return fmt.Errorf("unknown session type %q", opts.kind)
	}
	if !in.TimerMode.Valid() {
		return fmt.Errorf("unknown timer mode %q", opts.timerMode)
	}
	if opts.source != "" {
		if err := attachSource(&in.GenerateRequest, opts.source); err != nil {
			return err
		}
	}

	library, closeStore, err := openLibrary(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := newGenaiClient(ctx, cfg)
	if err != nil {
		return err
	}
	ws := newWorkspace(ctx, cfg, library, client.Models)
	defer ws.Close()

	if _, err := ws.OpenWizard(); err != nil {
		return err
	}
	state, err := ws.Generate(ctx, in)
	if err != nil {
		return err
	}
	draft := *state.Session
	if _, err := ws.SaveDraft(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved draft %s %q with %d questions\n", draft.ID, draft.Title, len(draft.Questions))
	return nil
}

// attachSource reads path as pasted text when it is plain text and as an inline file otherwise.
func attachSource(req *app.GenerateRequest, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if strings.HasPrefix(mimeType, "text/") {
		req.Text = string(data)
		return nil
	}
	req.File = &app.SourceFile{Name: filepath.Base(path), MIMEType: mimeType, Data: data}
	return nil
}
