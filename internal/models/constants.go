package models

// Metadata keys stored alongside every vector in the chromem collections.
const (
	MetaDocID  = "doc_id"
	MetaTitle  = "title"
	MetaPage   = "page"
	MetaSeq    = "seq"
	MetaOffset = "offset"
)

// ContextSeparator delimits numbered source blocks in the prompt context.
const ContextSeparator = "\n\n---\n\n"

// InsufficientContextAnswer is returned when routing or retrieval finds
// nothing usable. The generator is not called in that case.
const InsufficientContextAnswer = "I do not know the answer based on the documents."

const SystemPrompt = `You are a question-answering assistant.
You MUST use ONLY the provided CONTEXT to answer.

Rules:
- If the answer is not in the CONTEXT, say exactly: "I do not know the answer based on the documents"
- Do not guess, do not add outside knowledge.
- Cite sources at the end of each paragraph in the format: [source N].
- Do not invent citations.
`

var UserPromptTemplate = `CONTEXT:
%s

QUESTION: %s
Write the answer now following the rules.`
