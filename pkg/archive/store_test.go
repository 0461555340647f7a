package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), opts...)
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func task(text string) schema.Task {
	return schema.Task{Text: text, Language: schema.LanguageVietnamese, Intent: schema.IntentChat}
}

func envelope(response string) schema.Envelope {
	return schema.Envelope{ID: "env", Model: "llama3:8b", Response: response, Mode: schema.ModeReal}
}

func TestFingerprintCanonicalizesText(t *testing.T) {
	a := Fingerprint(task("Xin   chào\nBạn"))
	b := Fingerprint(task("xin chào bạn"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	other := task("xin chào bạn")
	other.Intent = schema.IntentResearch
	assert.NotEqual(t, a, Fingerprint(other))

	other = task("xin chào bạn")
	other.Language = schema.LanguageEnglish
	assert.NotEqual(t, a, Fingerprint(other))
}

func TestSaveWritesShardedObject(t *testing.T) {
	s := newTestStore(t)
	tk := task("hello")

	rec, err := s.Save(tk, schema.Plan{UserInput: "hello"}, envelope("hi there"))
	require.NoError(t, err)

	fp := Fingerprint(tk)
	assert.Equal(t, fp, rec.Fingerprint)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 1, rec.Count)
	assert.FileExists(t, filepath.Join(s.BasePath, "objects", fp[:2], fp+".json"))

	loaded, err := s.Load(fp)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, loaded.ID)
	assert.Equal(t, "hi there", loaded.Envelope.Response)
}

func TestSaveSameRequestUpdatesRecord(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Save(task("Hello"), schema.Plan{}, envelope("one"))
	require.NoError(t, err)
	second, err := s.Save(task("  hello "), schema.Plan{}, envelope("two"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, "two", second.Envelope.Response)

	all, err := s.Recent(10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(Fingerprint(task("never saved")))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Load("../escape")
	assert.Error(t, err)
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	for _, text := range []string{"one", "two", "three"} {
		_, err := s.Save(task(text), schema.Plan{}, envelope(text))
		require.NoError(t, err)
	}

	recs, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "three", recs[0].Task.Text)
	assert.Equal(t, "two", recs[1].Task.Text)

	recs, err = s.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save(task("viết code Python"), schema.Plan{}, envelope("def main(): pass"))
	require.NoError(t, err)
	_, err = s.Save(task("thời tiết hôm nay"), schema.Plan{}, envelope("Trời nắng"))
	require.NoError(t, err)

	recs, err := s.Search("python")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "viết code Python", recs[0].Task.Text)

	recs, err = s.Search("NẮNG")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	recs, err = s.Search("  ")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestScanSkipsCorruptRecords(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := newTestStore(t, WithLogger(zap.New(core)))

	_, err := s.Save(task("good"), schema.Plan{}, envelope("fine"))
	require.NoError(t, err)

	dir := filepath.Join(s.BasePath, "objects", "zz")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zzbad.json"), []byte("{not json"), 0644))

	recs, err := s.Recent(10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, 1, logs.FilterMessage("skipping unreadable archive record").Len())
}

func TestSaveReplacesCorruptRecord(t *testing.T) {
	s := newTestStore(t)
	tk := task("broken")
	fp := Fingerprint(tk)

	dir := filepath.Join(s.BasePath, "objects", fp[:2])
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, fp+".json"), []byte("garbage"), 0644))

	rec, err := s.Save(tk, schema.Plan{}, envelope("fresh"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
}
