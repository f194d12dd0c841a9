package templates

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pokervision/internal/card"
	"pokervision/internal/imgproc"
	"pokervision/internal/region"
	"pokervision/internal/testcards"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBank(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	ranks, suits := filepath.Join(root, "ranks"), filepath.Join(root, "suits")
	require.NoError(t, testcards.WriteBank(ranks, suits))
	return ranks, suits
}

func TestLoadBankCounts(t *testing.T) {
	ranks, suits := writeBank(t)
	b, err := LoadBank(ranks, suits)
	require.NoError(t, err)
	defer b.Close()

	rc := b.RankCounts()
	assert.Len(t, rc, 13)
	for _, r := range card.RankAlphabet {
		assert.Equal(t, 2, rc[string(r)], string(r))
	}
	sc := b.SuitCounts()
	assert.Len(t, sc, 4)
	assert.True(t, b.HasRankShapes())
	assert.True(t, b.HasSuitShapes([]string{"h", "d"}))
}

func TestLoadBankEmpty(t *testing.T) {
	b, err := LoadBank(filepath.Join(t.TempDir(), "missing"), "")
	assert.ErrorIs(t, err, ErrNoTemplates)
	require.NotNil(t, b)
	assert.Empty(t, b.Ranks)
}

func TestDirectoryLayoutAndTenAlias(t *testing.T) {
	root := t.TempDir()
	face, err := testcards.Render("Tc")
	require.NoError(t, err)
	patch, err := region.Extract(face, nil, region.Rank)
	require.NoError(t, err)

	dir := filepath.Join(root, "10")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f, err := os.Create(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, patch))
	require.NoError(t, f.Close())

	// Ignored: no label prefix, unknown label.
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Z_1.png"), []byte("x"), 0o644))

	b, err := LoadBank(root, "")
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, map[string]int{"T": 1}, b.RankCounts())
}

func TestMatchRankFindsOwnTemplate(t *testing.T) {
	ranks, suits := writeBank(t)
	b, err := LoadBank(ranks, suits)
	require.NoError(t, err)
	defer b.Close()

	for _, label := range []card.Label{"Qs", "9h", "Tc", "Ad"} {
		face, err := testcards.Render(label)
		require.NoError(t, err)
		patch, err := region.Extract(face, nil, region.Rank)
		require.NoError(t, err)
		mat, err := imgproc.FromImage(patch)
		require.NoError(t, err)
		bin, err := imgproc.Binarize(mat, RankHeight, imgproc.Otsu)
		require.NoError(t, err)

		m := b.MatchRank(bin)
		assert.Equal(t, label.Rank(), m.Label)
		assert.Greater(t, m.Score, 0.92)
		bin.Close()
		mat.Close()
	}
}

func TestNearestSuitSelf(t *testing.T) {
	ranks, suits := writeBank(t)
	b, err := LoadBank(ranks, suits)
	require.NoError(t, err)
	defer b.Close()

	for _, tpl := range b.Suits {
		n := b.NearestSuit(tpl.LogHu, nil)
		assert.Equal(t, tpl.Label, n.Label)
		assert.Zero(t, n.D1)
		assert.Greater(t, n.Margin, 0.0)
		conf := n.Confidence()
		assert.GreaterOrEqual(t, conf, 0.5)
		assert.LessOrEqual(t, conf, 0.99)
	}

	assert.Empty(t, b.NearestSuit(b.Suits[0].LogHu, []string{"x"}).Label)
}

func TestNeighbourConfidence(t *testing.T) {
	assert.Zero(t, Neighbour{}.Confidence())
	n := Neighbour{Label: "h", D1: 0, D2: 1, Margin: 1}
	assert.InDelta(t, 0.99, n.Confidence(), 1e-9)
	n = Neighbour{Label: "h", D1: 1, D2: 1.1, Margin: 0.1}
	assert.InDelta(t, 0.25+0.5*(0.1/1.5), n.Confidence(), 1e-9)
}

func TestLibraryLoadsOnce(t *testing.T) {
	ranks, suits := writeBank(t)
	lib := NewLibrary(ranks, suits)
	defer lib.Close()

	b1, err := lib.Bank()
	require.NoError(t, err)
	b2, _ := lib.Bank()
	assert.Same(t, b1, b2)
}

func TestDefaultDirsEnv(t *testing.T) {
	t.Setenv("POKERIA_RANKS_DIR", "/tmp/r")
	t.Setenv("POKERIA_SUITS_DIR", "/tmp/s")
	r, s := DefaultDirs()
	assert.Equal(t, "/tmp/r", r)
	assert.Equal(t, "/tmp/s", s)
}

func TestSnapWritesLoadableTemplates(t *testing.T) {
	root := t.TempDir()
	ranks, suits := filepath.Join(root, "ranks"), filepath.Join(root, "suits")

	face, err := testcards.Render("Qd")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		paths, err := Snap(face, "Qd", nil, nil, ranks, suits)
		require.NoError(t, err)
		require.Len(t, paths, 2)
	}
	assert.FileExists(t, filepath.Join(ranks, "Q", "002.png"))
	assert.FileExists(t, filepath.Join(suits, "d", "002.png"))

	b, err := LoadBank(ranks, suits)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, map[string]int{"Q": 2}, b.RankCounts())
	assert.Equal(t, map[string]int{"d": 2}, b.SuitCounts())

	_, err = Snap(face, "Xx", nil, nil, ranks, suits)
	assert.Error(t, err)
	_, err = Snap(nil, "Qd", nil, nil, ranks, suits)
	assert.ErrorIs(t, err, card.ErrEmptyPatch)
}
