package classifier

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func trainedPair(t *testing.T, kind string) *Pair {
	t.Helper()
	c, err := New(kind)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Train(tinyCorpus, c)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func assertSamePair(t *testing.T, got, want *Pair) {
	t.Helper()
	if !reflect.DeepEqual(got.Vectorizer(), want.Vectorizer()) {
		t.Errorf("vectorizer differs: %v vs %v", got.Vectorizer(), want.Vectorizer())
	}
	if !reflect.DeepEqual(got.Classifier(), want.Classifier()) {
		t.Errorf("classifier differs after round trip")
	}
}

func TestArtifactsRoundTrip(t *testing.T) {
	for _, kind := range []string{KindNaiveBayes, KindLogisticRegression} {
		for _, format := range []Format{FormatCombined, FormatSplit} {
			t.Run(kind+"/"+format.String(), func(t *testing.T) {
				dir := t.TempDir()
				a := NewArtifacts(filepath.Join(dir, "model.json"), filepath.Join(dir, "vectorizer.json"))
				want := trainedPair(t, kind)

				var err error
				if format == FormatCombined {
					err = a.Save(want)
				} else {
					err = a.SaveSplit(want)
				}
				if err != nil {
					t.Fatalf("save: %v", err)
				}

				got, gotFormat, err := a.Load()
				if err != nil {
					t.Fatalf("Load: %v", err)
				}
				if gotFormat != format {
					t.Errorf("format = %s, want %s", gotFormat, format)
				}
				assertSamePair(t, got, want)
			})
		}
	}
}

func TestArtifactsCombinedWithoutVectorizerPath(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(filepath.Join(dir, "model.json"), "")
	want := trainedPair(t, KindNaiveBayes)
	if err := a.Save(want); err != nil {
		t.Fatal(err)
	}
	got, format, err := a.Load()
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatCombined {
		t.Errorf("format = %s", format)
	}
	assertSamePair(t, got, want)
}

func TestArtifactsSaveRefreshesVectorizerFile(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(filepath.Join(dir, "model.json"), filepath.Join(dir, "vectorizer.json"))
	if err := a.Save(trainedPair(t, KindNaiveBayes)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(a.VectorizerPath); err != nil {
		t.Errorf("vectorizer file not written: %v", err)
	}
}

func TestArtifactsNotFound(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(filepath.Join(dir, "model.json"), filepath.Join(dir, "vectorizer.json"))
	if _, _, err := a.Load(); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("err = %v, want ErrArtifactNotFound", err)
	}
}

func TestArtifactsSplitMissingVectorizer(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(filepath.Join(dir, "model.json"), filepath.Join(dir, "vectorizer.json"))
	if err := a.SaveSplit(trainedPair(t, KindNaiveBayes)); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(a.VectorizerPath); err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.Load(); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("err = %v, want ErrArtifactNotFound", err)
	}
}

func TestArtifactsCorrupt(t *testing.T) {
	dir := t.TempDir()
	a := NewArtifacts(filepath.Join(dir, "model.json"), "")
	if err := os.WriteFile(a.ModelPath, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := a.Load()
	if err == nil || errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("err = %v, want a decode error", err)
	}
}

func TestArtifactsInconsistent(t *testing.T) {
	tests := map[string]string{
		"vocabulary index past the end": `{"vectorizer":{"vocabulary":{"tôi":0,"vui":7}},` +
			`"classifier":{"kind":"naive_bayes","params":{"alpha":1,"classes":["positive"],` +
			`"class_log_prior":[0],"feature_log_prob":[[0,0]],"n_features":2}}}`,
		"prior shorter than classes": `{"vectorizer":{"vocabulary":{"tôi":0,"vui":1}},` +
			`"classifier":{"kind":"naive_bayes","params":{"alpha":1,"classes":["positive","negative"],` +
			`"class_log_prior":[0],"feature_log_prob":[[0,0],[0,0]],"n_features":2}}}`,
		"ragged theta": `{"vectorizer":{"vocabulary":{"tôi":0,"vui":1}},` +
			`"classifier":{"kind":"logistic_regression","params":{"max_iter":200,"c":1,"classes":["positive","negative"],` +
			`"theta":[[0,0,0],[0]],"n_features":2}}}`,
	}
	for name, artifact := range tests {
		t.Run(name, func(t *testing.T) {
			a := NewArtifacts(filepath.Join(t.TempDir(), "model.json"), "")
			if err := os.WriteFile(a.ModelPath, []byte(artifact), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, err := a.Load(); !errors.Is(err, ErrCorruptArtifact) {
				t.Errorf("err = %v, want ErrCorruptArtifact", err)
			}
		})
	}
}

func TestArtifactsKeepExampleCount(t *testing.T) {
	a := NewArtifacts(filepath.Join(t.TempDir(), "model.json"), "")
	if err := a.Save(trainedPair(t, KindNaiveBayes)); err != nil {
		t.Fatal(err)
	}
	got, _, err := a.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Examples() != len(tinyCorpus) {
		t.Errorf("Examples() = %d, want %d", got.Examples(), len(tinyCorpus))
	}
}

func TestArtifactsRefuseUntrained(t *testing.T) {
	a := NewArtifacts(filepath.Join(t.TempDir(), "model.json"), "")
	if err := a.Save(Untrained()); !errors.Is(err, ErrUntrained) {
		t.Errorf("err = %v, want ErrUntrained", err)
	}
}
