package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudguide/backend"
	"cloudguide/backend/testutil"
)

// runCLI executes the root command against a fresh HOME and data directory
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("CLOUDGUIDE_DATA_DIR", t.TempDir())
	t.Setenv("CLOUDGUIDE_API_BASE", "")
	t.Setenv("CLOUDGUIDE_USE_RAG", "")
	t.Setenv("CLOUDGUIDE_DEBUG", "")
	chdirForTest(t, t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAskPrintsAnswerAndSource(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	out, err := runCLI(t, "ask", "--api-base", fb.URL, "What", "is", "the", "price", "of", "S3?")
	require.NoError(t, err)

	assert.Equal(t, "Pricing lookup for \"What is the price of S3?\"\nSource: PRICING\n", out)
	assert.Equal(t, []string{"What is the price of S3?"}, fb.Queries())
}

func TestAskWithRAGPrefixesQuery(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	out, err := runCLI(t, "ask", "--api-base", fb.URL, "--rag", "what is Glacier?")
	require.NoError(t, err)

	assert.Equal(t, []string{"ask: what is Glacier?"}, fb.Queries())
	assert.Contains(t, out, "You asked: ask: what is Glacier?")
}

func TestAskUnwrapsJSONReply(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetAsk(func(text string) testutil.AskResponse {
		return testutil.AskResponse{Body: `{"text":"Use Savings Plans.","source":"pricing.pdf"}`}
	})

	out, err := runCLI(t, "ask", "--api-base", fb.URL, "how do I save?")
	require.NoError(t, err)
	assert.Equal(t, "Use Savings Plans.\nSource: pricing.pdf\n", out)
}

func TestAskBackendErrorExitsNonZero(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetAsk(func(text string) testutil.AskResponse {
		return testutil.AskResponse{Status: http.StatusInternalServerError, Body: "boom"}
	})

	out, err := runCLI(t, "ask", "--api-base", fb.URL, "hello")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "Error talking to API:")
	assert.Contains(t, out, "500")
	assert.NotContains(t, out, "Source:")
}

func TestAskRequiresQuestion(t *testing.T) {
	_, err := runCLI(t, "ask")
	require.Error(t, err)

	_, err = runCLI(t, "ask", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestInvalidFlagsRejected(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "api base without scheme", args: []string{"health", "--api-base", "localhost:8080"}, wantErr: "--api-base"},
		{name: "zero timeout", args: []string{"health", "--timeout", "0s"}, wantErr: "--timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHealth(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	out, err := runCLI(t, "health", "--api-base", fb.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok: "+fb.URL+"\n", out)

	fb.SetHealthy(false)
	_, err = runCLI(t, "health", "--api-base", fb.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")

	var statusErr *backend.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestIngest(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	out, err := runCLI(t, "ingest", "--api-base", fb.URL, "--doc-id", "ec2-pricing", "--path", "/srv/docs/ec2.pdf")
	require.NoError(t, err)

	assert.Equal(t, "ec2-pricing: queued\n", out)
	assert.Equal(t, []testutil.IngestRequest{{DocID: "ec2-pricing", Path: "/srv/docs/ec2.pdf"}}, fb.Ingested())
}

func TestIngestRequiresFlags(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	_, err := runCLI(t, "ingest", "--api-base", fb.URL, "--doc-id", "ec2-pricing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path")
	assert.Empty(t, fb.Ingested())
}

// chdirForTest changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})
}
