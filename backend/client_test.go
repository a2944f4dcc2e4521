package backend

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudguide/backend/testutil"
	"cloudguide/model"
)

func newTestClient(t *testing.T, fb *testutil.FakeBackend) *Client {
	t.Helper()
	client, err := NewClient(fb.URL, 5*time.Second)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "default", baseURL: "", want: "http://localhost:8080"},
		{name: "trailing slash", baseURL: "http://api:8080/", want: "http://api:8080"},
		{name: "path prefix kept", baseURL: "https://example.com/guide/", want: "https://example.com/guide"},
		{name: "query dropped", baseURL: "http://api:8080?x=1", want: "http://api:8080"},
		{name: "no scheme", baseURL: "localhost:8080", wantErr: true},
		{name: "ftp", baseURL: "ftp://api", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL, time.Second)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.BaseURL())
		})
	}
}

func TestAskSendsEncodedQuery(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newTestClient(t, fb)

	reply, err := client.Ask(context.Background(), "ask: what is S3 & how much?")
	require.NoError(t, err)

	assert.Equal(t, []string{"ask: what is S3 & how much?"}, fb.Queries())
	assert.Equal(t, "You asked: ask: what is S3 & how much?", reply.Body)
	assert.Equal(t, "LLM", reply.SourceHeader)
}

func TestAskReturnsRawBodyAndHeader(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetAsk(func(text string) testutil.AskResponse {
		return testutil.AskResponse{Source: "hdr-src", Body: `{"text": "42", "source": "doc.pdf"}`}
	})
	client := newTestClient(t, fb)

	reply, err := client.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, model.BackendReply{Body: `{"text": "42", "source": "doc.pdf"}`, SourceHeader: "hdr-src"}, reply)

	assert.Equal(t, model.NormalizedReply{Text: "42", Source: "doc.pdf"}, model.NormalizeResponse(reply.Body, reply.SourceHeader))
}

func TestAskMissingHeader(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetAsk(func(text string) testutil.AskResponse {
		return testutil.AskResponse{Body: "plain"}
	})
	client := newTestClient(t, fb)

	reply, err := client.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "", reply.SourceHeader)
}

func TestAskNon2xxIsStatusError(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			fb := testutil.NewFakeBackend(t)
			fb.SetAsk(func(text string) testutil.AskResponse {
				return testutil.AskResponse{Status: code, Source: "LLM", Body: "boom"}
			})
			client := newTestClient(t, fb)

			_, err := client.Ask(context.Background(), "q")
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, code, statusErr.Code)
			assert.Equal(t, "boom", statusErr.Body)
			assert.Contains(t, statusErr.URL, "/api/ask?text=q")
			assert.Contains(t, err.Error(), http.StatusText(code))
		})
	}
}

func TestAskConnectionRefused(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newTestClient(t, fb)
	fb.Close()

	_, err := client.Ask(context.Background(), "q")
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestAskHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	fb := testutil.NewFakeBackend(t)
	fb.SetAsk(func(text string) testutil.AskResponse {
		<-release
		return testutil.AskResponse{Body: "late"}
	})
	t.Cleanup(func() { close(release) })
	client := newTestClient(t, fb)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Ask(ctx, "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, model.FormatTransportError(err), "timed out")
}

func TestPing(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newTestClient(t, fb)

	assert.NoError(t, client.Ping(context.Background()))

	fb.SetHealthy(false)
	err := client.Ping(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestIngest(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	fb := testutil.NewFakeBackend(t)
	client := newTestClient(t, fb)

	ack, err := client.Ingest(context.Background(), "ec2-pricing", "~/docs/ec2.pdf")
	require.NoError(t, err)
	assert.Equal(t, "queued", ack)

	assert.Equal(t, []testutil.IngestRequest{
		{DocID: "ec2-pricing", Path: filepath.Join("/home/tester", "docs", "ec2.pdf")},
	}, fb.Ingested())
}

func TestIngestValidation(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newTestClient(t, fb)

	_, err := client.Ingest(context.Background(), " ", "/tmp/a.pdf")
	assert.Error(t, err)
	_, err = client.Ingest(context.Background(), "doc", "")
	assert.Error(t, err)
	assert.Empty(t, fb.Ingested())
}
