package mcp

// SearchInput defines the input schema for the wiki_search tool.
type SearchInput struct {
	Query   string `json:"query" jsonschema:"the search query; regex operators switch on exact pattern matching"`
	TopK    int    `json:"top_k,omitempty" jsonschema:"maximum number of results, default 5"`
	Version string `json:"version,omitempty" jsonschema:"version id to search; defaults to the live knowledge base"`
}

// SearchOutput defines the output schema for the wiki_search tool.
type SearchOutput struct {
	Version string         `json:"version" jsonschema:"version id the search ran against"`
	Results []ResultOutput `json:"results" jsonschema:"ranked results, best first"`
}

// ResultOutput is one ranked hit.
type ResultOutput struct {
	Page    string  `json:"page" jsonschema:"source page path"`
	ChunkID string  `json:"chunk_id" jsonschema:"stable chunk identifier"`
	Score   float64 `json:"score" jsonschema:"relevance score between 0 and 1"`
	Stream  string  `json:"stream" jsonschema:"which stream matched: regex, semantic, or keyword"`
	Snippet string  `json:"snippet" jsonschema:"matched content excerpt"`
}

// ResolveInput defines the input schema for the wiki_resolve tool (no parameters).
type ResolveInput struct{}

// ResolveOutput defines the output schema for the wiki_resolve tool.
type ResolveOutput struct {
	Version   string `json:"version" jsonschema:"version id of the current knowledge base content"`
	Changed   bool   `json:"changed" jsonschema:"true when content changed since the previous resolve"`
	Pages     int    `json:"pages" jsonschema:"number of pages in this version"`
	Chunks    int    `json:"chunks" jsonschema:"number of chunks in this version"`
	Model     string `json:"model" jsonschema:"embedding model used, or none"`
	CreatedAt string `json:"created_at" jsonschema:"publish timestamp, RFC 3339"`
}

// ChangedInput defines the input schema for the wiki_changed tool (no parameters).
type ChangedInput struct{}

// ChangedOutput defines the output schema for the wiki_changed tool.
type ChangedOutput struct {
	Changed bool   `json:"changed" jsonschema:"true when on-disk content differs from the last resolved version"`
	Version string `json:"version,omitempty" jsonschema:"last resolved version id"`
}

// VersionsInput defines the input schema for the wiki_versions tool (no parameters).
type VersionsInput struct{}

// VersionsOutput defines the output schema for the wiki_versions tool.
type VersionsOutput struct {
	Versions []VersionInfoOutput `json:"versions" jsonschema:"all published versions, newest first"`
}

// VersionInfoOutput is one catalog entry.
type VersionInfoOutput struct {
	Version   string `json:"version" jsonschema:"version id"`
	CreatedAt string `json:"created_at" jsonschema:"publish timestamp, RFC 3339"`
	Pages     int    `json:"pages" jsonschema:"page count"`
	Chunks    int    `json:"chunks" jsonschema:"chunk count"`
	Model     string `json:"model" jsonschema:"embedding model used, or none"`
}

// PageInput defines the input schema for the wiki_page tool.
type PageInput struct {
	Path    string `json:"path" jsonschema:"page path, e.g. handbook.md"`
	Version string `json:"version,omitempty" jsonschema:"version id to read from; defaults to the live knowledge base"`
}

// PageOutput defines the output schema for the wiki_page tool.
type PageOutput struct {
	Path    string `json:"path" jsonschema:"resolved page path"`
	Version string `json:"version" jsonschema:"version id the page was read from"`
	Content string `json:"content" jsonschema:"full page content"`
	Summary string `json:"summary,omitempty" jsonschema:"extracted page summary"`
}
