package ingest

import "strings"

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Splitter breaks text into overlapping chunks, preferring paragraph
// boundaries, then line boundaries, then word boundaries.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int

	separators []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}

	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", " "},
	}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	parts := s.split(text, 0)

	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}

	return chunks
}

func (s *Splitter) split(text string, level int) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	if level >= len(s.separators) {
		return s.slide(text)
	}

	sep := s.separators[level]

	var (
		chunks  []string
		current []string
		total   int
	)

	for _, piece := range strings.Split(text, sep) {
		if len(piece) > s.ChunkSize {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, sep))
				current, total = nil, 0
			}

			chunks = append(chunks, s.split(piece, level+1)...)
			continue
		}

		if len(current) > 0 && total+len(sep)+len(piece) > s.ChunkSize {
			chunks = append(chunks, strings.Join(current, sep))

			// Keep trailing pieces within the overlap budget so the
			// next chunk starts with the tail of this one.
			for len(current) > 0 && (total > s.ChunkOverlap || total+len(sep)+len(piece) > s.ChunkSize) {
				total -= len(current[0])
				current = current[1:]
				if len(current) > 0 {
					total -= len(sep)
				}
			}
		}

		if len(current) > 0 {
			total += len(sep)
		}

		current = append(current, piece)
		total += len(piece)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, sep))
	}

	return chunks
}

// slide is the fallback for text without usable separators.
func (s *Splitter) slide(text string) []string {
	step := s.ChunkSize - s.ChunkOverlap

	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + s.ChunkSize
		if end > len(text) {
			end = len(text)
		}

		chunks = append(chunks, text[start:end])

		if end == len(text) {
			break
		}
	}

	return chunks
}
