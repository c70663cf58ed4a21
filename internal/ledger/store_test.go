package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/logger"
	"github.com/tallybook-dev/tallybook/internal/model"
)

func testStore() *Store {
	return NewStore(logger.Nop())
}

func recordsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "alice", "records.csv")
}

func TestLoad_MissingFile(t *testing.T) {
	store := testStore()

	records, err := store.Load(recordsPath(t))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_EmptyFile(t *testing.T) {
	store := testStore()
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	records, err := store.Load(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_SkipsBadRows(t *testing.T) {
	store := testStore()
	path := filepath.Join(t.TempDir(), "records.csv")
	content := Header + "\n" +
		"2025-01-01 10:00:00,Dining,A,lunch,expense,¥10.00,card,completed,ok-1,,\n" +
		"2025-01-01 11:00:00,Dining,B,lunch,expense,broken,card,completed,bad-1,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok-1", records[0].OrderNo)
}

func TestAppendOne(t *testing.T) {
	store := testStore()
	path := recordsPath(t)

	rec := sampleRecord()
	require.NoError(t, store.AppendOne(path, rec))

	// Second append must not duplicate the header.
	rec2 := rec
	rec2.OrderNo = "ORD-1002"
	require.NoError(t, store.AppendOne(path, rec2))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "order_no"))

	records, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ORD-1001", records[0].OrderNo)
	assert.Equal(t, "ORD-1002", records[1].OrderNo)
}

func TestRewriteAll_ReplacesAtomically(t *testing.T) {
	store := testStore()
	path := recordsPath(t)
	require.NoError(t, store.AppendOne(path, sampleRecord()))

	rec := sampleRecord()
	rec.Remarks = "rewritten"
	require.NoError(t, store.RewriteAll(path, []model.Record{rec}))

	records, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rewritten", records[0].Remarks)

	assertNoTempFiles(t, filepath.Dir(path))
}

func TestRewriteAll_FailureLeavesOriginalUntouched(t *testing.T) {
	store := testStore()
	path := recordsPath(t)
	require.NoError(t, store.AppendOne(path, sampleRecord()))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	renameFile = func(oldpath, newpath string) error {
		return errors.New("simulated crash before rename")
	}
	defer func() { renameFile = os.Rename }()

	rec := sampleRecord()
	rec.Remarks = "must not land"
	err = store.RewriteAll(path, []model.Record{rec})
	require.Error(t, err)

	after, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, before, after, "original file must be unchanged")
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestDeleteOne(t *testing.T) {
	store := testStore()
	path := recordsPath(t)
	rec1 := sampleRecord()
	rec2 := sampleRecord()
	rec2.OrderNo = "ORD-1002"
	require.NoError(t, store.AppendOne(path, rec1))
	require.NoError(t, store.AppendOne(path, rec2))

	found, err := store.DeleteOne(path, " ORD-1001 ")
	require.NoError(t, err)
	assert.True(t, found)

	records, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ORD-1002", records[0].OrderNo)

	// Nothing matching: no error, no rewrite.
	found, err = store.DeleteOne(path, "ORD-9999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateOne(t *testing.T) {
	store := testStore()
	path := recordsPath(t)
	require.NoError(t, store.AppendOne(path, sampleRecord()))

	found, err := store.UpdateOne(path, "ORD-1001", FieldRemarks, "changed")
	require.NoError(t, err)
	assert.True(t, found)

	records, err := store.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "changed", records[0].Remarks)
	assert.True(t, records[0].Amount.Equal(dec("42.50")), "other fields untouched")

	found, err = store.UpdateOne(path, "ORD-9999", FieldRemarks, "x")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateOne_ValidatesTypedFields(t *testing.T) {
	store := testStore()
	path := recordsPath(t)
	require.NoError(t, store.AppendOne(path, sampleRecord()))

	_, err := store.UpdateOne(path, "ORD-1001", FieldAmount, "not-a-number")
	require.Error(t, err)
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = store.UpdateOne(path, "ORD-1001", FieldDirection, "sideways")
	require.Error(t, err)

	found, err := store.UpdateOne(path, "ORD-1001", FieldAmount, "¥99.00")
	require.NoError(t, err)
	assert.True(t, found)

	records, err := store.Load(path)
	require.NoError(t, err)
	assert.True(t, records[0].Amount.Equal(dec("99")))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".records-"), "leftover temp file %s", e.Name())
	}
}
