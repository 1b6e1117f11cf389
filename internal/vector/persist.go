package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

const (
	metadataFile  = "metadata.json"
	documentsFile = "documents.json"
	vectorsFile   = "vectors.bin"
)

// ConsistencyError reports persisted cache artifacts that do not match the
// running configuration. Callers treat it as "no usable snapshot" and rebuild.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "cache inconsistent: " + e.Reason
}

type persistedDocument struct {
	ID      int64  `json:"id"`
	Passage string `json:"passage"`
}

// Save writes the snapshot's artifacts (metadata, documents, vectors) into dir.
// The directory is created if needed. Callers that need atomicity write into a
// staging directory and rename it over the live one.
func (s *Snapshot) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	metaBytes, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), metaBytes, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	docs := make([]persistedDocument, len(s.ids))
	for i, id := range s.ids {
		docs[i] = persistedDocument{ID: id, Passage: s.passages[i]}
	}
	docBytes, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, documentsFile), docBytes, 0644); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, vectorsFile))
	if err != nil {
		return fmt.Errorf("create vectors file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(s.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(s.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range s.ids {
		if err := binary.Write(f, binary.LittleEndian, id); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(s.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync vectors file: %w", err)
	}
	return nil
}

// LoadSnapshot reads persisted artifacts from dir and reconstructs a snapshot.
// os.ErrNotExist is returned when no artifacts are present. A *ConsistencyError
// is returned when the artifacts disagree with the expected model or dimension,
// or with each other.
func LoadSnapshot(dir, wantModelID string, wantDimensions int) (*Snapshot, error) {
	metaBytes, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("metadata unreadable: %v", err)}
	}
	if meta.ModelID != wantModelID {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("cache built with model %q, configured model is %q", meta.ModelID, wantModelID)}
	}
	if meta.Dimensions != wantDimensions {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("cache has dimension %d, configured dimension is %d", meta.Dimensions, wantDimensions)}
	}
	if _, err := ParseMetric(string(meta.Metric)); err != nil {
		return nil, &ConsistencyError{Reason: err.Error()}
	}

	docBytes, err := os.ReadFile(filepath.Join(dir, documentsFile))
	if err != nil {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("documents unreadable: %v", err)}
	}
	var docs []persistedDocument
	if err := json.Unmarshal(docBytes, &docs); err != nil {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("documents unreadable: %v", err)}
	}

	f, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("vectors unreadable: %v", err)}
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("vectors unreadable: %v", err)}
	}
	if int(dim) != wantDimensions {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("vectors file has dimension %d, configured dimension is %d", dim, wantDimensions)}
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("vectors unreadable: %v", err)}
	}
	if int(n) != len(docs) {
		return nil, &ConsistencyError{Reason: fmt.Sprintf("vectors file has %d rows, documents file has %d", n, len(docs))}
	}

	passageByID := make(map[int64]string, len(docs))
	for _, d := range docs {
		passageByID[d.ID] = d.Passage
	}

	entries := make([]Entry, 0, n)
	buf := make([]byte, wantDimensions*4)
	for i := uint32(0); i < n; i++ {
		var id int64
		if err := binary.Read(f, binary.LittleEndian, &id); err != nil {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("vectors unreadable: %v", err)}
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("vectors truncated: %v", err)}
		}
		passage, ok := passageByID[id]
		if !ok {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("vector row for faq %d has no document entry", id)}
		}
		entries = append(entries, Entry{FAQID: id, Passage: passage, Vector: bytesToFloat32Slice(buf)})
	}

	s, err := Build(meta.Metric, meta.ModelID, wantDimensions, entries)
	if err != nil {
		return nil, &ConsistencyError{Reason: err.Error()}
	}
	s.meta.BuiltAt = meta.BuiltAt
	s.meta.DocumentCount = len(entries)
	return s, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
