// Package copilot answers operator questions by keyword retrieval over a
// small knowledge base, with a simulated retrieval delay.
package copilot

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

const (
	DefaultQueryDelay = 1800 * time.Millisecond
	DefaultChatDelay  = 800 * time.Millisecond
	DefaultChatJitter = 700 * time.Millisecond
)

// Response is a retrieval answer with its citation.
type Response struct {
	ID          string           `json:"id"`
	Query       string           `json:"query"`
	Answer      string           `json:"answer"`
	Source      string           `json:"source"`
	SourceType  SourceType       `json:"source_type"`
	Confidence  int              `json:"confidence"`
	ActionTaken string           `json:"action_taken,omitempty"`
	ChartData   []SparklinePoint `json:"chart_data,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// ChatReply is a short dashboard chat answer.
type ChatReply struct {
	ID        string    `json:"id"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Options tune the simulated latencies. Zero values disable the wait.
type Options struct {
	QueryDelay time.Duration
	ChatDelay  time.Duration
	ChatJitter time.Duration
}

// DefaultOptions returns the demo latencies.
func DefaultOptions() Options {
	return Options{
		QueryDelay: DefaultQueryDelay,
		ChatDelay:  DefaultChatDelay,
		ChatJitter: DefaultChatJitter,
	}
}

// Copilot answers questions against a knowledge base. It is safe for
// concurrent use.
type Copilot struct {
	kb   *KnowledgeBase
	opts Options
	now  func() time.Time
}

// New creates a copilot. A nil kb uses the embedded knowledge base.
func New(kb *KnowledgeBase, opts Options) *Copilot {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	return &Copilot{kb: kb, opts: opts, now: time.Now}
}

var lower = cases.Lower(language.Turkish)

var asciiFold = strings.NewReplacer(
	"ı", "i",
	"ğ", "g",
	"ü", "u",
	"ş", "s",
	"ö", "o",
	"ç", "c",
)

// Normalize lower-cases with Turkish rules and folds Turkish letters to
// ASCII so "ARIZA", "arıza" and "ariza" compare equal.
func Normalize(text string) string {
	return asciiFold.Replace(lower.String(text))
}

// Match returns the first template with a keyword inside text.
func (c *Copilot) Match(text string) (Template, bool) {
	q := Normalize(text)
	for _, t := range c.kb.Templates {
		for _, kw := range t.Keywords {
			if strings.Contains(q, Normalize(kw)) {
				return t, true
			}
		}
	}
	return Template{}, false
}

// Query answers text after the retrieval delay. It returns early with
// the context error if ctx is done first.
func (c *Copilot) Query(ctx context.Context, text string) (*Response, error) {
	if strings.TrimSpace(text) == "" {
		return nil, utils.NewAppError(utils.ErrCodeValidation, "query must not be empty")
	}
	if err := sleep(ctx, c.opts.QueryDelay); err != nil {
		return nil, err
	}

	t, ok := c.Match(text)
	if !ok {
		t = c.kb.Fallback
	}
	return &Response{
		ID:          uuid.NewString(),
		Query:       text,
		Answer:      t.Answer,
		Source:      t.Source,
		SourceType:  t.SourceType,
		Confidence:  t.Confidence,
		ActionTaken: t.ActionTaken,
		ChartData:   t.ChartData,
		Timestamp:   c.now(),
	}, nil
}

// Chat returns the short dashboard answer for message.
func (c *Copilot) Chat(ctx context.Context, message string) (*ChatReply, error) {
	wait := c.opts.ChatDelay
	if c.opts.ChatJitter > 0 {
		wait += rand.N(c.opts.ChatJitter)
	}
	if err := sleep(ctx, wait); err != nil {
		return nil, err
	}
	return &ChatReply{
		ID:        uuid.NewString(),
		Response:  c.ChatAnswer(message),
		Timestamp: c.now(),
	}, nil
}

// ChatAnswer picks the chat rule for message without waiting.
func (c *Copilot) ChatAnswer(message string) string {
	q := Normalize(message)
	for _, r := range c.kb.Chat.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(q, Normalize(kw)) {
				return r.Answer
			}
		}
	}
	return c.kb.Chat.Default
}

// ThinkingSteps returns the retrieval animation stages.
func (c *Copilot) ThinkingSteps() []ThinkingStep {
	return append([]ThinkingStep(nil), c.kb.ThinkingSteps...)
}

// QuickPrompts returns the canned questions.
func (c *Copilot) QuickPrompts() []QuickPrompt {
	return append([]QuickPrompt(nil), c.kb.QuickPrompts...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
