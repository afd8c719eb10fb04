// Package memory exposes a memory.Store to agents as the "memory" tool.
//
// The tool is action based:
//
//	[TOOL_CALL:memory:action=add,content=User prefers metric units]
//	[TOOL_CALL:memory:action=search,query=units,limit=3]
//	[TOOL_CALL:memory:action=list]
//	[TOOL_CALL:memory:action=clear]
//
// A bare positional argument ([TOOL_CALL:memory:units]) is a search.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/edgetalker/smart-agents/logging"
	store "github.com/edgetalker/smart-agents/memory"
	"github.com/edgetalker/smart-agents/tool"
)

// Name is the registry name of the tool.
const Name = "memory"

// DefaultLimit bounds search and list output when no limit argument is given.
const DefaultLimit = 5

// Options configures the memory tool.
type Options struct {
	// Namespace groups memories, e.g. per user (defaults to memory.DefaultNamespace)
	Namespace string
	Limit     int
	Logger    logging.Logger
}

// Tool implements tool.Tool on top of a memory.Store.
type Tool struct {
	store store.Store
	opts  Options
}

var _ tool.Tool = (*Tool)(nil)

// New creates the memory tool.
func New(s store.Store, optFns ...func(o *Options)) *Tool {
	opts := Options{
		Namespace: store.DefaultNamespace,
		Limit:     DefaultLimit,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	return &Tool{store: s, opts: opts}
}

// Name returns the tool identifier.
func (t *Tool) Name() string { return Name }

// Description returns the tool description.
func (t *Tool) Description() string {
	return "Long-term memory. Actions: add (content=...), search (query=...), list, clear. " +
		"Use action=search to recall facts stored in earlier conversations."
}

// Parameters returns the JSON schema for tool parameters.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"add", "search", "list", "clear"},
				"description": "The memory operation to perform",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Search query for search",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to store for add",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": fmt.Sprintf("Maximum number of memories returned (default: %d)", DefaultLimit),
			},
		},
	}
}

// Run dispatches on the action argument.
func (t *Tool) Run(ctx context.Context, in tool.Input) (string, error) {
	action := strings.ToLower(in.Arg("action", "search"))

	switch action {
	case "add":
		return t.handleAdd(ctx, in)
	case "search":
		return t.handleSearch(ctx, in)
	case "list":
		return t.handleList(ctx, in)
	case "clear":
		return t.handleClear(ctx)
	default:
		return "", fmt.Errorf("unknown action: %s", action)
	}
}

func (t *Tool) handleAdd(ctx context.Context, in tool.Input) (string, error) {
	content := in.Arg("content", in.Arg("query", ""))
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("content parameter is required for add")
	}

	e, err := t.store.Add(ctx, t.opts.Namespace, content, map[string]string{"source": Name})
	if err != nil {
		return "", err
	}

	t.opts.Logger.Debug("memory.add", "namespace", t.opts.Namespace, "id", e.ID)

	return fmt.Sprintf("Memory stored (id: %s)", e.ID), nil
}

func (t *Tool) handleSearch(ctx context.Context, in tool.Input) (string, error) {
	query := strings.TrimSpace(in.Arg("query", ""))
	if query == "" {
		return "", fmt.Errorf("query parameter is required for search")
	}

	entries, err := t.store.Search(ctx, t.opts.Namespace, query, t.limit(in))
	if err != nil {
		return "", err
	}

	if len(entries) == 0 {
		return fmt.Sprintf("No memories found for '%s'", query), nil
	}

	return format(fmt.Sprintf("Found %d memories:", len(entries)), entries), nil
}

func (t *Tool) handleList(ctx context.Context, in tool.Input) (string, error) {
	entries, err := t.store.List(ctx, t.opts.Namespace, t.limit(in))
	if err != nil {
		return "", err
	}

	if len(entries) == 0 {
		return "No memories stored", nil
	}

	return format(fmt.Sprintf("Stored memories (%d):", len(entries)), entries), nil
}

func (t *Tool) handleClear(ctx context.Context) (string, error) {
	if err := t.store.Clear(ctx, t.opts.Namespace); err != nil {
		return "", err
	}

	t.opts.Logger.Info("memory.clear", "namespace", t.opts.Namespace)

	return "All memories cleared", nil
}

// limit reads the limit argument, falling back to the configured default on
// absent or malformed values.
func (t *Tool) limit(in tool.Input) int {
	n, err := strconv.Atoi(in.Arg("limit", ""))
	if err != nil || n <= 0 {
		return t.opts.Limit
	}

	return n
}

func format(header string, entries []store.Entry) string {
	var b strings.Builder

	b.WriteString(header)

	for i, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s", i+1, e.Content)
	}

	return b.String()
}
