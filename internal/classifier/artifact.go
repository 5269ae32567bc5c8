package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xaenox/sentiment-bot/internal/fsutil"
)

// ErrArtifactNotFound means no model file exists yet.
var ErrArtifactNotFound = errors.New("model artifact not found")

// Format is the on-disk layout a pair was read from.
type Format int

const (
	// FormatCombined keeps vectorizer and classifier in one file.
	FormatCombined Format = iota + 1
	// FormatSplit is the legacy layout: classifier in the model file,
	// vectorizer in its own file.
	FormatSplit
)

func (f Format) String() string {
	switch f {
	case FormatCombined:
		return "combined"
	case FormatSplit:
		return "split"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

type combinedFile struct {
	Vectorizer *Vectorizer     `json:"vectorizer"`
	Classifier json.RawMessage `json:"classifier"`
	Examples   int             `json:"examples,omitempty"`
}

// Artifacts reads and writes pairs at fixed paths.
type Artifacts struct {
	ModelPath      string
	VectorizerPath string
}

func NewArtifacts(modelPath, vectorizerPath string) *Artifacts {
	return &Artifacts{ModelPath: modelPath, VectorizerPath: vectorizerPath}
}

// Load reads the model file, resolves its layout once, and returns the pair.
func (a *Artifacts) Load() (*Pair, Format, error) {
	data, err := readArtifact(a.ModelPath)
	if err != nil {
		return nil, 0, err
	}
	format, err := detectFormat(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", a.ModelPath, err)
	}

	var pair *Pair
	switch format {
	case FormatCombined:
		pair, err = decodeCombined(data)
	case FormatSplit:
		pair, err = a.decodeSplit(data)
	}
	if err != nil {
		return nil, 0, err
	}
	return pair, format, nil
}

func detectFormat(data []byte) (Format, error) {
	var head struct {
		Vectorizer json.RawMessage `json:"vectorizer"`
		Kind       string          `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("unreadable model artifact: %w", err)
	}
	switch {
	case head.Vectorizer != nil:
		return FormatCombined, nil
	case head.Kind != "":
		return FormatSplit, nil
	default:
		return 0, errors.New("model artifact has neither a vectorizer nor a classifier kind")
	}
}

func decodeCombined(data []byte) (*Pair, error) {
	var f combinedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode combined artifact: %w", err)
	}
	c, err := unmarshalClassifier(f.Classifier)
	if err != nil {
		return nil, err
	}
	p, err := NewPair(f.Vectorizer, c)
	if err != nil {
		return nil, err
	}
	p.examples = f.Examples
	return p, nil
}

func (a *Artifacts) decodeSplit(data []byte) (*Pair, error) {
	c, err := unmarshalClassifier(data)
	if err != nil {
		return nil, err
	}
	if a.VectorizerPath == "" {
		return nil, fmt.Errorf("%w: split layout without a vectorizer path", ErrArtifactNotFound)
	}
	vdata, err := readArtifact(a.VectorizerPath)
	if err != nil {
		return nil, err
	}
	var v Vectorizer
	if err := json.Unmarshal(vdata, &v); err != nil {
		return nil, fmt.Errorf("failed to decode vectorizer: %w", err)
	}
	return NewPair(&v, c)
}

// Save writes the combined file and refreshes the standalone vectorizer file
// when a path for it is configured.
func (a *Artifacts) Save(p *Pair) error {
	if !p.Trained() {
		return ErrUntrained
	}
	cdata, err := marshalClassifier(p.classifier)
	if err != nil {
		return err
	}
	data, err := json.Marshal(combinedFile{Vectorizer: p.vectorizer, Classifier: cdata, Examples: p.examples})
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := writeArtifact(a.ModelPath, data); err != nil {
		return err
	}
	if a.VectorizerPath != "" {
		return a.saveVectorizer(p)
	}
	return nil
}

// SaveSplit writes the legacy two-file layout.
func (a *Artifacts) SaveSplit(p *Pair) error {
	if !p.Trained() {
		return ErrUntrained
	}
	if a.VectorizerPath == "" {
		return errors.New("split layout needs a vectorizer path")
	}
	cdata, err := marshalClassifier(p.classifier)
	if err != nil {
		return err
	}
	if err := a.saveVectorizer(p); err != nil {
		return err
	}
	return writeArtifact(a.ModelPath, cdata)
}

func (a *Artifacts) saveVectorizer(p *Pair) error {
	vdata, err := json.Marshal(p.vectorizer)
	if err != nil {
		return fmt.Errorf("failed to encode vectorizer: %w", err)
	}
	return writeArtifact(a.VectorizerPath, vdata)
}

func readArtifact(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeArtifact(path string, data []byte) error {
	err := fsutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
