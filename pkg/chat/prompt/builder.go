package prompt

import (
	"strings"

	"secure-docchat-be/pkg/store"
)

// chunkSeparator keeps retrieved passages visually distinct so the
// model doesn't blend adjacent chunks into one source.
const chunkSeparator = "\n\n---\n\n"

const systemInstructions = `You are a helpful AI assistant. Answer questions based on the provided context and conversation history.
The context may include detailed descriptions of images, figures, diagrams, and charts from the document.
Be clear, thorough, and accurate. If you cannot find the answer, say so.`

// Builder assembles the generation prompt from fixed instructions,
// the formatted conversation window, the retrieved evidence, and the
// current question. Pure formatting, no external calls.
type Builder struct {
	history  string
	chunks   []store.RetrievedChunk
	question string
}

func NewBuilder(history string, chunks []store.RetrievedChunk, question string) *Builder {
	return &Builder{
		history:  history,
		chunks:   chunks,
		question: question,
	}
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeInstructions(&prompt)
	b.writeHistory(&prompt)
	b.writeContext(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *Builder) writeInstructions(prompt *strings.Builder) {
	prompt.WriteString(systemInstructions)
	prompt.WriteString("\n\n")
}

func (b *Builder) writeHistory(prompt *strings.Builder) {
	prompt.WriteString("Conversation History:\n")
	if b.history == "" {
		prompt.WriteString("No previous conversation.")
	} else {
		prompt.WriteString(b.history)
	}
	prompt.WriteString("\n\n")
}

func (b *Builder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("Context from Document:\n")
	texts := make([]string, len(b.chunks))
	for i, chunk := range b.chunks {
		texts[i] = chunk.Text
	}
	prompt.WriteString(strings.Join(texts, chunkSeparator))
	prompt.WriteString("\n\n")
}

func (b *Builder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("Current Question: ")
	prompt.WriteString(b.question)
	prompt.WriteString("\n\nProvide a comprehensive answer based on the context and conversation history:")
}
