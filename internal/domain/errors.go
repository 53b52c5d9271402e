package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a session id is not in the store.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuestionNotFound indicates a question id is not part of the session.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrTopicRequired blocks generation without a topic or source material.
	ErrTopicRequired = errors.New("please enter a topic or provide document context")
	// ErrGenerationFailed is the only error surfaced for question generation.
	ErrGenerationFailed = errors.New("failed to generate questions, please try again")
	// ErrImageGenerationFailed is surfaced for any image generation failure.
	ErrImageGenerationFailed = errors.New("failed to generate image")
	// ErrNoImageData means the model answered without an inline image part.
	ErrNoImageData = errors.New("no image data found in response")

	// ErrInvalidTransition is returned when the current view does not allow an action.
	ErrInvalidTransition = errors.New("action not allowed from the current view")
	// ErrViewChanged means a slow call returned after the host left the screen that started it.
	ErrViewChanged = errors.New("view changed before the result arrived")

	// ErrTooManyOptions indicates a question already has the maximum number of options.
	ErrTooManyOptions = errors.New("a question can have at most 6 options")
	// ErrTooFewOptions indicates a question already has the minimum number of options.
	ErrTooFewOptions = errors.New("a question needs at least 2 options")
	// ErrOptionOutOfRange indicates an option index outside the question's options.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrInvalidQuestion wraps question invariant violations.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrNotHost is returned for host-only play controls.
	ErrNotHost = errors.New("only the host can do that")
	// ErrSelectionLocked is returned when feedback is already showing.
	ErrSelectionLocked = errors.New("answer is locked")
	// ErrNoQuestions is returned when playing a session without questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrPlayFinished is returned for commands after submission.
	ErrPlayFinished = errors.New("session already submitted")
)
