package rag

// AskRequest represents a RAG query request.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// Limit optionally overrides the configured retrieval limit.
	Limit int `json:"limit,omitempty"`
}

// Reference represents a chunk that was used in the answer.
type Reference struct {
	// Filename is the base name of the note file.
	Filename string `json:"filename"`
	// Path is the note path relative to the notes root.
	Path string `json:"path"`
	// ChunkIndex is the chunk index within the note.
	ChunkIndex int `json:"chunk_index"`
	// Similarity is the retrieval similarity score.
	Similarity float32 `json:"similarity"`
}

// AskResponse represents the response from a RAG query.
type AskResponse struct {
	// Answer is the generated answer from the LLM.
	Answer string `json:"answer"`
	// References are the chunks that were used to generate the answer.
	References []Reference `json:"references"`
}

// Result represents a single retrieved chunk.
type Result struct {
	// Filename is the base name of the note file.
	Filename string `json:"filename"`
	// Path is the note path relative to the notes root.
	Path string `json:"path"`
	// Title is the note title extracted at index time.
	Title string `json:"title,omitempty"`
	// ChunkIndex is the chunk index within the note.
	ChunkIndex int `json:"chunk_index"`
	// Text is the chunk text.
	Text string `json:"text"`
	// Frontmatter holds the note's front matter attributes, if any.
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	// Similarity is the cosine similarity against the query, in [0,1].
	Similarity float32 `json:"similarity"`
}
