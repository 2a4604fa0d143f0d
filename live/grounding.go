package live

// Grounding metadata links generated text segments to the web sources used as
// evidence. Everything here is optional; the service reports whatever search
// produced. No cross-field validation happens (e.g. startIndex <= endIndex is
// not checked), these pass through as reported.

// SearchEntryPoint carries rendered content for search suggestion chips.
type SearchEntryPoint struct {
	RenderedContent *string `json:"renderedContent,omitempty"`
}

// WebSource identifies one web page used as grounding evidence.
type WebSource struct {
	URI   *string `json:"uri,omitempty"`
	Title *string `json:"title,omitempty"`
}

// GroundingChunk is one piece of grounding evidence.
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// GroundingSegment locates a grounded span within the generated text.
type GroundingSegment struct {
	StartIndex *int    `json:"startIndex,omitempty"`
	EndIndex   *int    `json:"endIndex,omitempty"`
	Text       *string `json:"text,omitempty"`
}

// GroundingSupport ties a text segment to the chunks that support it.
type GroundingSupport struct {
	Segment               *GroundingSegment `json:"segment,omitempty"`
	GroundingChunkIndices []int             `json:"groundingChunkIndices,omitempty"`
	ConfidenceScores      []float64         `json:"confidenceScores,omitempty"`
}

// GroundingMetadata is the full grounding report for a model turn.
type GroundingMetadata struct {
	SearchEntryPoint  *SearchEntryPoint  `json:"searchEntryPoint,omitempty"`
	GroundingChunks   []GroundingChunk   `json:"groundingChunks,omitempty"`
	GroundingSupports []GroundingSupport `json:"groundingSupports,omitempty"`
	WebSearchQueries  []string           `json:"webSearchQueries,omitempty"`
}
