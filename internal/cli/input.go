// Package cli holds the human-facing side of kwserve: the interactive
// prompt loop and the text report.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/kwserve/pkg/analysis"
	"github.com/bastiangx/kwserve/pkg/model"
)

// Prompter asks the user for one line of input.
type Prompter interface {
	Prompt(title string) (string, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(title string) (string, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(title string) (string, error) { return f(title) }

// HuhPrompter prompts on the terminal.
type HuhPrompter struct{}

// Prompt shows an input field titled title. Aborting (Ctrl+C) reads as an
// empty answer.
func (HuhPrompter) Prompt(title string) (string, error) {
	var answer string
	err := huh.NewInput().
		Title(title).
		Value(&answer).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", nil
	}
	return strings.TrimSpace(answer), err
}

// InputHandler runs the train-then-analyze loop: a training document is
// read once, then documents are analyzed until an empty answer.
type InputHandler struct {
	orch         *analysis.Orchestrator
	sink         analysis.Sink
	prompter     Prompter
	out          io.Writer
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler.
func NewInputHandler(orch *analysis.Orchestrator, sink analysis.Sink, prompter Prompter, out io.Writer) *InputHandler {
	if prompter == nil {
		prompter = HuhPrompter{}
	}
	return &InputHandler{orch: orch, sink: sink, prompter: prompter, out: out}
}

// Start trains from trainPath and analyzes docPath, prompting for whichever
// is empty, then keeps asking for documents until the answer is empty.
// Training failures end the loop with an error; a failing document does not.
func (h *InputHandler) Start(trainPath, docPath string) error {
	var err error
	if trainPath == "" {
		if trainPath, err = h.prompter.Prompt("Enter training file name:"); err != nil {
			return err
		}
		if trainPath == "" {
			return fmt.Errorf("no training file given")
		}
	}

	m, err := h.orch.TrainFile(trainPath)
	if err != nil {
		return fmt.Errorf("training from %s: %w", trainPath, err)
	}
	if summary, ok := h.sink.(interface{ WriteModel(*model.FrequencyModel) error }); ok {
		if err := summary.WriteModel(m); err != nil {
			return err
		}
	}

	if docPath == "" {
		if docPath, err = h.prompter.Prompt("Enter file name to analyze:"); err != nil {
			return err
		}
	}
	for docPath != "" {
		if err := h.handleInput(docPath); err != nil {
			return err
		}
		if docPath, err = h.prompter.Prompt("Enter file name to analyze [quit]:"); err != nil {
			return err
		}
	}

	fmt.Fprintln(h.out, "Done!")
	return nil
}

// Requests returns how many documents were analyzed.
func (h *InputHandler) Requests() int { return h.requestCount }

func (h *InputHandler) handleInput(path string) error {
	h.requestCount++
	log.Debug("Analyzing document", "path", path)

	report, err := h.orch.AnalyzeFile(path)
	return h.sink.Write(analysis.DocumentResult{Path: path, Report: report, Err: err})
}
