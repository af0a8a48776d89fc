package summary

import (
	"fmt"
	"strings"
)

// Prompt templates. Data only; BuildPrompt assembles them.

const systemPrompt = `You summarize video transcripts. Use only information present in the transcript. Do not invent facts, names or numbers.`

// section is one fixed part of the summary template.
type section struct {
	title       string
	instruction string
}

var sections = []section{
	{"Topic", "One or two sentences on what the video is about and who it is for."},
	{"Key Insights", "The 3-6 most important ideas, one per list item."},
	{"Highlights", "Memorable moments, examples or demonstrations."},
	{"Real-World Relevance", "How the ideas apply in practice."},
	{"Action Items", "Concrete next steps a viewer could take."},
	{"Closing", "A short concluding thought."},
}

// MarkdownHeaders returns the section headers of the markdown template, in order.
func MarkdownHeaders() []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = "## " + s.title
	}
	return out
}

// PlainHeaders returns the section headers of the plain-text template, in order.
func PlainHeaders() []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = strings.ToUpper(s.title) + ":"
	}
	return out
}

const markdownIntro = `Summarize the transcript below in Markdown using exactly these sections, in this order:`

const plainIntro = `Summarize the transcript below as plain text with no Markdown syntax. Use exactly these sections, in this order, each title on its own line:`

const bulletRule = `Start every list item with "%s " and nothing else.`

const (
	timestampsOn  = `When a point refers to a specific moment, add its timestamp as [mm:ss].`
	timestampsOff = `Do not include timestamps.`
	quotesOn      = `Include one or two short verbatim quotes from the speaker, in quotation marks.`
	quotesOff     = `Do not quote the transcript verbatim.`
)

// BuildPrompt renders the template for o and appends the transcript.
func BuildPrompt(transcript string, o Options) string {
	headers := MarkdownHeaders()
	intro := markdownIntro
	if o.Format == FormatPlain {
		headers = PlainHeaders()
		intro = plainIntro
	}

	var sb strings.Builder
	sb.WriteString(intro)
	sb.WriteString("\n\n")
	for i, s := range sections {
		fmt.Fprintf(&sb, "%s\n%s\n\n", headers[i], s.instruction)
	}

	sb.WriteString("Rules:\n")
	fmt.Fprintf(&sb, "- "+bulletRule+"\n", o.bullet())
	if o.IncludeTimestamps {
		sb.WriteString("- " + timestampsOn + "\n")
	} else {
		sb.WriteString("- " + timestampsOff + "\n")
	}
	if o.IncludeQuotes {
		sb.WriteString("- " + quotesOn + "\n")
	} else {
		sb.WriteString("- " + quotesOff + "\n")
	}
	sb.WriteString("- Write in the language of the transcript.\n\n")

	sb.WriteString("Transcript:\n")
	sb.WriteString(transcript)
	return sb.String()
}
