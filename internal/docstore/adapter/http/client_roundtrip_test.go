package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"panchayat-docstore/pkg/docstore"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fiberTransport serves client requests from app in-process.
type fiberTransport struct {
	app *fiber.App
}

func (f fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return f.app.Test(req, -1)
}

func newTestClient(t *testing.T, opts ...docstore.Option) *docstore.Client {
	t.Helper()
	app := newTestApp(t)
	opts = append([]docstore.Option{
		docstore.WithHTTPClient(&http.Client{Transport: fiberTransport{app: app}}),
	}, opts...)
	return docstore.NewClient("http://panchayat.test", opts...)
}

func TestClientServer_RoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	members := docstore.Collection(docstore.Seg("villages"), docstore.Seg("v1"), docstore.Seg("members"))
	ref, err := client.AddDoc(ctx, members, map[string]any{"name": "Asha", "ward": 4})
	require.NoError(t, err)
	assert.Equal(t, "villages/v1/members/"+ref.ID(), ref.Path())

	snap, err := client.GetDoc(ctx, ref)
	require.NoError(t, err)
	require.True(t, snap.Exists())
	assert.Equal(t, ref.ID(), snap.ID())
	data := snap.Data()
	assert.Equal(t, "Asha", data["name"])
	assert.Equal(t, ref.ID(), data["id"])
	assert.NotContains(t, data, "_id")
}

func TestClientServer_DefaultOrderIsNewestFirst(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	notices := docstore.Collection(docstore.Seg("notices"))
	_, err := client.AddDoc(ctx, notices, map[string]any{"title": "A"})
	require.NoError(t, err)
	_, err = client.AddDoc(ctx, notices, map[string]any{"title": "B"})
	require.NoError(t, err)

	qs, err := client.GetDocs(ctx, notices)
	require.NoError(t, err)
	require.Equal(t, 2, qs.Size())
	assert.Equal(t, "B", qs.Docs[0].Data()["title"])
	assert.Equal(t, "A", qs.Docs[1].Data()["title"])
}

func TestClientServer_QueryAndLastWriteWins(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	members := docstore.Collection(docstore.Seg("members"))
	for id, ward := range map[string]int{"m1": 3, "m2": 4, "m3": 5} {
		require.NoError(t, client.SetDoc(ctx, members.Doc(id), map[string]any{"ward": ward, "tags": []string{"w" + id}}))
	}
	require.NoError(t, client.SetDoc(ctx, members.Doc("m2"), map[string]any{"ward": 9}))

	q := docstore.Query(members,
		docstore.Where("ward", docstore.OpGreaterOrEqual, 4),
		docstore.OrderBy("ward", docstore.Desc),
		docstore.Limit(5),
	)
	qs, err := client.GetDocs(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 2, qs.Size())
	assert.Equal(t, "m2", qs.Docs[0].ID())
	assert.Equal(t, float64(9), qs.Docs[0].Data()["ward"])
	assert.NotContains(t, qs.Docs[0].Data(), "tags")
	assert.Equal(t, "m3", qs.Docs[1].ID())

	qs, err = client.GetDocs(ctx, docstore.Query(members, docstore.Where("tags", docstore.OpArrayContains, "wm1")))
	require.NoError(t, err)
	require.Equal(t, 1, qs.Size())
	assert.Equal(t, "m1", qs.Docs[0].ID())

	require.NoError(t, client.UpdateDoc(ctx, members.Doc("m1"), map[string]any{"ward": 1}))
	snap, err := client.GetDoc(ctx, members.Doc("m1"))
	require.NoError(t, err)
	assert.Equal(t, float64(1), snap.Data()["ward"])
	assert.Equal(t, []any{"wm1"}, snap.Data()["tags"])
}

func TestClientServer_StoredIDFieldDoesNotShadowDocumentID(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	schemes := docstore.Collection(docstore.Seg("schemes"))
	require.NoError(t, client.SetDoc(ctx, schemes.Doc("s1"), map[string]any{"id": "PMAY-G", "name": "Awas"}))

	qs, err := client.GetDocs(ctx, schemes)
	require.NoError(t, err)
	require.Equal(t, 1, qs.Size())
	assert.Equal(t, "s1", qs.Docs[0].ID())
	assert.Equal(t, "schemes/s1", qs.Docs[0].Ref().Path())
	assert.Equal(t, "s1", qs.Docs[0].Data()["id"])

	snap, err := client.GetDoc(ctx, schemes.Doc("s1"))
	require.NoError(t, err)
	assert.Equal(t, "s1", snap.ID())
}

// overlapTransport holds the response of the first PATCH until the second
// PATCH has been sent. The first write reaches the server before the second.
type overlapTransport struct {
	app          *fiber.App
	patches      atomic.Int32
	firstApplied chan struct{}
	secondSent   chan struct{}
}

func (o *overlapTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPatch {
		return o.app.Test(req, -1)
	}
	if o.patches.Add(1) == 1 {
		resp, err := o.app.Test(req, -1)
		close(o.firstApplied)
		select {
		case <-o.secondSent:
			return resp, err
		case <-time.After(5 * time.Second):
			return nil, errors.New("second update was never sent")
		}
	}
	close(o.secondSent)
	return o.app.Test(req, -1)
}

func TestClientServer_OverlappingUpdatesLastWriteWins(t *testing.T) {
	transport := &overlapTransport{
		app:          newTestApp(t),
		firstApplied: make(chan struct{}),
		secondSent:   make(chan struct{}),
	}
	client := docstore.NewClient("http://panchayat.test",
		docstore.WithHTTPClient(&http.Client{Transport: transport}))
	ctx := context.Background()

	ref := docstore.Collection(docstore.Seg("grievances")).Doc("g1")
	require.NoError(t, client.SetDoc(ctx, ref, map[string]any{"status": "open"}))

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- client.UpdateDoc(ctx, ref, map[string]any{"status": "approved", "by": "ward-4"})
	}()
	select {
	case <-transport.firstApplied:
	case <-time.After(5 * time.Second):
		t.Fatal("first update never reached the server")
	}

	require.NoError(t, client.UpdateDoc(ctx, ref, map[string]any{"status": "rejected", "by": "sarpanch"}))
	require.NoError(t, <-firstErr)

	snap, err := client.GetDoc(ctx, ref)
	require.NoError(t, err)
	require.True(t, snap.Exists())
	assert.Equal(t, "rejected", snap.Data()["status"])
	assert.Equal(t, "sarpanch", snap.Data()["by"])
}

func TestClientServer_MissingDocAndDelete(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	ref := docstore.Doc(docstore.Seg("members/ghost"))
	snap, err := client.GetDoc(ctx, ref)
	require.NoError(t, err)
	assert.False(t, snap.Exists())
	assert.Nil(t, snap.Data())

	require.NoError(t, client.DeleteDoc(ctx, ref))

	err = client.UpdateDoc(ctx, ref, map[string]any{"x": 1})
	require.Error(t, err)
	assert.True(t, docstore.IsNotFound(err))
}

func TestClientServer_OnSnapshotSeesWrites(t *testing.T) {
	ticks := make(chan time.Time)
	client := newTestClient(t, docstore.WithTickerFunc(func(time.Duration) docstore.Ticker {
		return chanTicker(ticks)
	}))
	ctx := context.Background()
	notices := docstore.Collection(docstore.Seg("notices"))

	var mu sync.Mutex
	var sizes []int
	got := make(chan struct{}, 8)
	unsubscribe := client.OnSnapshot(ctx, notices, func(qs *docstore.QuerySnapshot) {
		mu.Lock()
		sizes = append(sizes, qs.Size())
		mu.Unlock()
		got <- struct{}{}
	})
	defer unsubscribe()

	waitEmission(t, got)
	_, err := client.AddDoc(ctx, notices, map[string]any{"title": "Gram sabha"})
	require.NoError(t, err)
	ticks <- time.Now()
	waitEmission(t, got)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1}, sizes)
}

type chanTicker chan time.Time

func (c chanTicker) C() <-chan time.Time { return c }
func (c chanTicker) Stop()               {}

func waitEmission(t *testing.T, got <-chan struct{}) {
	t.Helper()
	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot emitted")
	}
}
