// HTML Surgery Tools - selector-targeted edits on HTML documents.
//
// Information Hiding:
// - HTML parsing and serialization hidden behind goquery
// - Selector suggestion heuristics internalized
//
// Editing HTML by whole-file rewrite is wasteful and error prone; these
// tools replace exactly the node content or attribute a CSS selector
// targets and leave the rest of the document alone.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// loadDocument reads and parses an HTML file.
func loadDocument(path string) (*goquery.Document, ToolResult, bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, FailureResultf(KindNotFound, "file does not exist: %s", path), false
	}
	if err != nil {
		return nil, FailureResultf(KindPermissionDenied, "failed to stat file: %v", err), false
	}
	if info.IsDir() {
		return nil, FailureResultf(KindNotAFile, "path is a directory, not a file: %s", path), false
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, FailureResultf(KindPermissionDenied, "permission denied reading %s", path), false
		}
		return nil, FailureResultf(KindAgentError, "failed to read file: %v", err), false
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, FailureResultf(KindDecodeError, "failed to parse HTML in %s: %v", path, err), false
	}
	return doc, ToolResult{}, true
}

// saveDocument serializes the document back to its file.
func saveDocument(doc *goquery.Document, path string) (ToolResult, bool) {
	html, err := doc.Html()
	if err != nil {
		return FailureResultf(KindAgentError, "failed to serialize HTML: %v", err), false
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied writing %s", path), false
		}
		return FailureResultf(KindAgentError, "failed to write file: %v", err), false
	}
	return ToolResult{}, true
}

// selectorFor builds a tag.class#id style selector for an element.
func selectorFor(s *goquery.Selection) string {
	node := goquery.NodeName(s)
	if class, ok := s.Attr("class"); ok && class != "" {
		node += "." + strings.Join(strings.Fields(class), ".")
	}
	if id, ok := s.Attr("id"); ok && id != "" {
		node += "#" + id
	}
	return node
}

// similarSelectors scans the document's first elements that carry a
// class or id and returns up to five candidate selectors, so a missed
// selector comes back with something actionable.
func similarSelectors(doc *goquery.Document) []string {
	var found []string
	doc.Find("*").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 10 {
			return false
		}
		_, hasClass := s.Attr("class")
		_, hasID := s.Attr("id")
		if hasClass || hasID {
			found = append(found, selectorFor(s))
		}
		return len(found) < 5
	})
	return found
}

// selectorNotFound builds the classified failure for a selector miss,
// with suggestions when any element carries a class or id.
func selectorNotFound(doc *goquery.Document, selector, path string) ToolResult {
	suggestion := ""
	if similar := similarSelectors(doc); len(similar) > 0 {
		suggestion = fmt.Sprintf(" Similar selectors found: %s", strings.Join(similar, ", "))
	}
	return FailureResultf(KindSelectorNotFound,
		"could not find any element matching the selector %q in %s.%s", selector, path, suggestion)
}

// ReplaceHTMLContentTool replaces the inner content of the first element
// matching a CSS selector.
type ReplaceHTMLContentTool struct {
	BaseTool
}

// NewReplaceHTMLContentTool creates a new HTML content replacement tool.
func NewReplaceHTMLContentTool() *ReplaceHTMLContentTool {
	return &ReplaceHTMLContentTool{}
}

// Metadata returns the tool metadata.
func (t *ReplaceHTMLContentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "replace_html_content",
		Description: "Surgically replace the content of an HTML element identified by a CSS selector. Highly reliable for editing specific parts of a webpage template.",
		Parameters: []ToolParameter{
			{Name: "file_path", ParamType: "string", Description: "Path to the HTML file to edit", Required: true},
			{Name: "selector", ParamType: "string", Description: "CSS selector for the target element (e.g. 'h1.title', 'p#email', '.navbar-brand')", Required: true},
			{Name: "new_content", ParamType: "string", Description: "New inner content to place inside the element", Required: true},
		},
	}
}

type replaceHTMLContentArgs struct {
	FilePath   string `json:"file_path"`
	Selector   string `json:"selector"`
	NewContent string `json:"new_content"`
}

// Validate validates the arguments.
func (t *ReplaceHTMLContentTool) Validate(args json.RawMessage) error {
	var a replaceHTMLContentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.FilePath == "" || a.Selector == "" {
		return fmt.Errorf("file_path and selector cannot be empty")
	}
	return nil
}

// Execute replaces the element content.
func (t *ReplaceHTMLContentTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a replaceHTMLContentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.FilePath == "" || a.Selector == "" {
		return FailureResultf(KindInvalidArgs, "file_path and selector cannot be empty"), nil
	}

	doc, fail, ok := loadDocument(a.FilePath)
	if !ok {
		return fail, nil
	}

	sel := doc.Find(a.Selector).First()
	if sel.Length() == 0 {
		return selectorNotFound(doc, a.Selector, a.FilePath), nil
	}

	sel.SetText(a.NewContent)

	if fail, ok := saveDocument(doc, a.FilePath); !ok {
		return fail, nil
	}
	return SuccessResultf("Successfully replaced content for selector %q in %s with: %q",
		a.Selector, a.FilePath, a.NewContent), nil
}

// ReplaceHTMLAttributeTool sets an attribute on the first element
// matching a CSS selector. Useful for href and src updates.
type ReplaceHTMLAttributeTool struct {
	BaseTool
}

// NewReplaceHTMLAttributeTool creates a new HTML attribute tool.
func NewReplaceHTMLAttributeTool() *ReplaceHTMLAttributeTool {
	return &ReplaceHTMLAttributeTool{}
}

// Metadata returns the tool metadata.
func (t *ReplaceHTMLAttributeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "replace_html_attribute",
		Description: "Replace an attribute value of an HTML element identified by a CSS selector. Useful for updating href links, src attributes, etc.",
		Parameters: []ToolParameter{
			{Name: "file_path", ParamType: "string", Description: "Path to the HTML file to edit", Required: true},
			{Name: "selector", ParamType: "string", Description: "CSS selector for the target element", Required: true},
			{Name: "attribute", ParamType: "string", Description: "Attribute name to update (e.g. 'href', 'src', 'class')", Required: true},
			{Name: "new_value", ParamType: "string", Description: "New value for the attribute", Required: true},
		},
	}
}

type replaceHTMLAttributeArgs struct {
	FilePath  string `json:"file_path"`
	Selector  string `json:"selector"`
	Attribute string `json:"attribute"`
	NewValue  string `json:"new_value"`
}

// Validate validates the arguments.
func (t *ReplaceHTMLAttributeTool) Validate(args json.RawMessage) error {
	var a replaceHTMLAttributeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.FilePath == "" || a.Selector == "" || a.Attribute == "" {
		return fmt.Errorf("file_path, selector and attribute cannot be empty")
	}
	return nil
}

// Execute updates the attribute.
func (t *ReplaceHTMLAttributeTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a replaceHTMLAttributeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.FilePath == "" || a.Selector == "" || a.Attribute == "" {
		return FailureResultf(KindInvalidArgs, "file_path, selector and attribute cannot be empty"), nil
	}

	doc, fail, ok := loadDocument(a.FilePath)
	if !ok {
		return fail, nil
	}

	sel := doc.Find(a.Selector).First()
	if sel.Length() == 0 {
		return selectorNotFound(doc, a.Selector, a.FilePath), nil
	}

	sel.SetAttr(a.Attribute, a.NewValue)

	if fail, ok := saveDocument(doc, a.FilePath); !ok {
		return fail, nil
	}
	return SuccessResultf("Successfully updated %s=%q for selector %q in %s",
		a.Attribute, a.NewValue, a.Selector, a.FilePath), nil
}

// FindHTMLElementsTool discovers selectors: elements containing given
// text, or the document's major structural elements.
type FindHTMLElementsTool struct {
	BaseTool
}

// NewFindHTMLElementsTool creates a new HTML discovery tool.
func NewFindHTMLElementsTool() *FindHTMLElementsTool {
	return &FindHTMLElementsTool{}
}

// Metadata returns the tool metadata.
func (t *FindHTMLElementsTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "find_html_elements",
		Description: "Find HTML elements containing specific text, or list the major structural elements. Useful for discovering the correct CSS selectors to use.",
		Parameters: []ToolParameter{
			{Name: "file_path", ParamType: "string", Description: "Path to the HTML file to analyze", Required: true},
			{Name: "search_text", ParamType: "string", Description: "Optional text to search for within elements", Required: false},
		},
	}
}

type findHTMLElementsArgs struct {
	FilePath   string `json:"file_path"`
	SearchText string `json:"search_text"`
}

// Validate validates the arguments.
func (t *FindHTMLElementsTool) Validate(args json.RawMessage) error {
	var a findHTMLElementsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.FilePath == "" {
		return fmt.Errorf("file_path cannot be empty")
	}
	return nil
}

// structuralSelector matches the elements listed when no search text is
// given: headings plus common branding and layout hooks.
const structuralSelector = "h1, h2, h3, h4, h5, h6, .title, .brand, .navbar-brand, .header, .footer, #brand, #title"

// Execute finds the elements.
func (t *FindHTMLElementsTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a findHTMLElementsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.FilePath == "" {
		return FailureResultf(KindInvalidArgs, "file_path cannot be empty"), nil
	}

	doc, fail, ok := loadDocument(a.FilePath)
	if !ok {
		return fail, nil
	}

	var results []string
	if a.SearchText != "" {
		needle := strings.ToLower(a.SearchText)
		doc.Find("*").Each(func(i int, s *goquery.Selection) {
			if s.Children().Length() > 0 {
				return
			}
			text := strings.TrimSpace(s.Text())
			if text == "" || !strings.Contains(strings.ToLower(text), needle) {
				return
			}
			results = append(results, fmt.Sprintf("Selector: %q - Content: %q",
				selectorFor(s), truncate(text, 100)))
		})
	} else {
		doc.Find(structuralSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= 20 {
				return false
			}
			results = append(results, fmt.Sprintf("Selector: %q - Content: %q",
				selectorFor(s), truncate(strings.TrimSpace(s.Text()), 50)))
			return true
		})
	}

	if len(results) == 0 {
		msg := fmt.Sprintf("No elements found in %s", a.FilePath)
		if a.SearchText != "" {
			msg += fmt.Sprintf(" containing %q", a.SearchText)
		}
		return SuccessResult(msg), nil
	}

	if len(results) > 15 {
		results = results[:15]
	}
	return SuccessResultf("Found elements in %s:\n%s", a.FilePath, strings.Join(results, "\n")), nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
