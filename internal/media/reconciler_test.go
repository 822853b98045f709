package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	files   map[string][]byte
	saveErr error
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string][]byte{}}
}

func (f *fakeStore) Save(_ context.Context, path, _ string, data io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.files[path] = b
	return int64(len(b)), nil
}

func (f *fakeStore) Download(_ context.Context, path string) (io.ReadCloser, error) {
	b, ok := f.files[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

func (f *fakeStore) Delete(_ context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	delete(f.files, path)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.files[path]
	return ok, nil
}

func newTestReconciler(store *fakeStore) *Reconciler {
	r := NewReconciler(store, zap.NewNop())
	r.randFn = func(min, max int) int { return 123456 }
	return r
}

func TestReconciler_EmptySubmissionNormalizesExisting(t *testing.T) {
	r := newTestReconciler(newFakeStore())

	got, err := r.Reconcile(context.Background(), CategoryVisa,
		[]string{"visa_image/aziz_1.jpg"}, Submission{}, "Aziz Karimov")
	require.NoError(t, err)
	assert.Equal(t, []string{"/media/visa_image/aziz_1.jpg"}, got)
}

func TestReconciler_PassportUploadOverwritesSlugPath(t *testing.T) {
	store := newFakeStore()
	store.files["passport_image/aziz-karimov.jpg"] = []byte("old")
	r := newTestReconciler(store)

	got, err := r.Reconcile(context.Background(), CategoryPassport, nil,
		Submission{Uploads: []Upload{{Filename: "scan.JPG", Data: strings.NewReader("new")}}},
		"Aziz Karimov")
	require.NoError(t, err)

	require.Equal(t, []string{"/media/passport_image/aziz-karimov.jpg"}, got)
	assert.Equal(t, []byte("new"), store.files["passport_image/aziz-karimov.jpg"])
	assert.Contains(t, store.deleted, "passport_image/aziz-karimov.jpg")
}

func TestReconciler_VisaUploadGetsRandomSuffix(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store)

	got, err := r.Reconcile(context.Background(), CategoryVisa, nil,
		Submission{Uploads: []Upload{{Filename: "visa.png", Data: strings.NewReader("x")}}},
		"Aziz")
	require.NoError(t, err)
	assert.Equal(t, []string{"/media/visa_image/aziz_123456.png"}, got)
}

func TestReconciler_Base64Submission(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store)

	got, err := r.Reconcile(context.Background(), CategoryCompletedContract, nil,
		Submission{Base64: []string{"data:image/png;base64,aGk="}}, "Aziz")
	require.NoError(t, err)

	require.Equal(t, []string{"/media/completed_contract_image/aziz_123456.png"}, got)
	assert.Equal(t, []byte("hi"), store.files["completed_contract_image/aziz_123456.png"])
}

func TestReconciler_UploadsTakePriorityOverBase64(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store)

	got, err := r.Reconcile(context.Background(), CategoryVisa, nil,
		Submission{
			Uploads: []Upload{{Filename: "visa.jpg", Data: strings.NewReader("raw")}},
			Base64:  []string{"data:image/png;base64,aGk="},
		}, "Aziz")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "/media/visa_image/aziz_123456.jpg", got[0])
	_, wroteBase64 := store.files["visa_image/aziz_123456.png"]
	assert.False(t, wroteBase64)
}

func TestReconciler_LimitExceeded(t *testing.T) {
	r := newTestReconciler(newFakeStore())

	_, err := r.Reconcile(context.Background(), CategoryVisa,
		[]string{"visa_image/a.jpg"},
		Submission{Uploads: []Upload{{Filename: "b.jpg", Data: strings.NewReader("x")}}},
		"Aziz")
	require.Error(t, err)

	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, CategoryVisa, limitErr.Category)
	assert.Equal(t, 1, limitErr.Limit)
}

func TestReconciler_MissingClientName(t *testing.T) {
	r := newTestReconciler(newFakeStore())

	_, err := r.Reconcile(context.Background(), CategoryPassport, nil,
		Submission{Uploads: []Upload{{Filename: "a.jpg", Data: strings.NewReader("x")}}},
		"")
	var slugErr *SlugError
	require.ErrorAs(t, err, &slugErr)
	assert.Equal(t, CategoryPassport, slugErr.Category)
}

func TestReconciler_StoreFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("blob unavailable")
	r := newTestReconciler(store)

	_, err := r.Reconcile(context.Background(), CategoryPassport, nil,
		Submission{Uploads: []Upload{{Filename: "a.jpg", Data: strings.NewReader("x")}}},
		"Aziz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob unavailable")
}
