package ollama

import "fmt"

// RefusalAnswer is the exact sentence the model is told to emit when the
// retrieved context cannot answer the question.
const RefusalAnswer = "I cannot find information about this in the provided document"

func buildAnswerPrompt(question, contextText, sourceURL string) string {
	return fmt.Sprintf(`You are a helpful assistant that answers questions based ONLY on the provided context from the document at %s.

IMPORTANT INSTRUCTIONS:
1. Answer ONLY based on the information provided in the context below
2. If the context doesn't contain information to answer the question, say "%s"
3. Do not use your general knowledge - stick strictly to the context
4. Be concise and accurate

CONTEXT:
%s

QUESTION: %s

ANSWER:`, sourceURL, RefusalAnswer, contextText, question)
}
