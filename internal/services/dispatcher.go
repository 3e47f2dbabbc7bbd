package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"betsafe-ai/internal/models"
)

// Dispatcher turns one query submission into one Gemini call.
type Dispatcher struct {
	newGenerator GeneratorFactory
	rateChan     chan struct{} // Token bucket shared by all sessions
	slotTimeout  time.Duration
}

func NewDispatcher(factory GeneratorFactory, concurrentReqs int) *Dispatcher {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &Dispatcher{
		newGenerator: factory,
		rateChan:     rateChan,
		slotTimeout:  5 * time.Minute,
	}
}

// acquireRate blocks until a rate slot is available
func (d *Dispatcher) acquireRate(ctx context.Context) error {
	select {
	case <-d.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.slotTimeout):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (d *Dispatcher) releaseRate() {
	d.rateChan <- struct{}{}
}

// Dispatch validates the submission, builds the prompt and returns the model
// text unmodified. Errors are ErrMissingCredential, ErrEmptyQuery,
// *ValidationError or *RemoteError.
func (d *Dispatcher) Dispatch(ctx context.Context, mode models.FocusMode, userText, credential string) (string, error) {
	if credential == "" {
		return "", ErrMissingCredential
	}

	prompt, err := BuildPrompt(mode, userText)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(userText) == "" {
		return "", ErrEmptyQuery
	}

	if err := d.acquireRate(ctx); err != nil {
		return "", newRemoteError(err)
	}
	defer d.releaseRate()

	start := time.Now()
	text, err := d.generate(ctx, credential, prompt)
	if err != nil {
		log.Printf("dispatch focus=%s failed after %s: %v", mode, time.Since(start).Round(time.Millisecond), err)
		return "", newRemoteError(err)
	}

	log.Printf("dispatch focus=%s ok in %s (%d chars)", mode, time.Since(start).Round(time.Millisecond), len(text))
	return text, nil
}

func (d *Dispatcher) generate(ctx context.Context, credential, prompt string) (text string, err error) {
	// SDK panics are remote failures too; the session must survive them.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generation panicked: %v", r)
		}
	}()

	gen, err := d.newGenerator(ctx, credential)
	if err != nil {
		return "", err
	}
	defer gen.Close()

	return gen.Generate(ctx, prompt)
}
