package prompt

// Prompt is a suggested opening question shown on an empty dashboard.
type Prompt struct {
	Question string `json:"question"`
	Category string `json:"category"`
}

// Store exposes prompt retrieval for HTTP handlers.
type Store interface {
	List() []Prompt
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Prompt
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied prompts.
func NewMemoryStore(items []Prompt) *MemoryStore {
	return &MemoryStore{items: append([]Prompt(nil), items...)}
}

// List returns the configured prompt list.
func (s *MemoryStore) List() []Prompt {
	return append([]Prompt(nil), s.items...)
}

// Seed provides the default suggested questions for the student assistant.
func Seed() []Prompt {
	return []Prompt{
		{
			Question: "How can I manage stress during exam periods?",
			Category: "Health & Wellness",
		},
		{
			Question: "How do I choose the right career path for my interests?",
			Category: "Career Guidance",
		},
		{
			Question: "What are effective study techniques for better grades?",
			Category: "Academic Success",
		},
		{
			Question: "How can I build confidence and leadership skills?",
			Category: "Personal Development",
		},
	}
}
