package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const activityJSON = `{
  "verb": "post",
  "actor": {"objectType": "person", "id": "acct:alice@example.org", "displayName": "Alice"},
  "object": {"objectType": "note", "id": "urn:note:1", "content": "<p>Hello <b>world</b></p>"},
  "id": "urn:activity:1"
}`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "asctl version "+Version)
}

func TestParseStdin(t *testing.T) {
	out, _, err := run(t, activityJSON, "parse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `{"verb":"post"`), out)
	assert.Contains(t, out, `"content":"<p>Hello <b>world</b></p>"`)
}

func TestParseSummaryGlob(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a/one.json", activityJSON)
	writeDoc(t, dir, "b/two.json", `{"objectType":"collection","items":[]}`)

	out, _, err := run(t, "", "parse", "--summary", filepath.Join(dir, "**", "*.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "*activity.Activity\turn:activity:1")
	assert.Contains(t, out, "*activity.Collection")
}

func TestParseErrors(t *testing.T) {
	_, _, err := run(t, `{"verb":`, "parse")
	assert.Error(t, err)

	_, _, err = run(t, "", "parse", filepath.Join(t.TempDir(), "*.json"))
	assert.ErrorContains(t, err, "no files match")
}

func TestSchema(t *testing.T) {
	out, _, err := run(t, "", "schema", "activity")
	require.NoError(t, err)
	assert.Contains(t, out, "activity : object [activity]")
	assert.Contains(t, out, "* verb")
	assert.Contains(t, out, "document:mediaLink")

	out, _, err = run(t, "", "schema", "-m", "geo", "place")
	require.NoError(t, err)
	assert.Contains(t, out, "place : object")

	_, _, err = run(t, "", "schema", "place")
	assert.Error(t, err, "place needs the geo module")
}

func TestExport(t *testing.T) {
	out, _, err := run(t, activityJSON, "export", "-f", "nt")
	require.NoError(t, err)
	assert.Contains(t, out, "<urn:activity:1> <https://www.w3.org/ns/activitystreams#actor> <acct:alice@example.org> .")

	out, _, err = run(t, activityJSON, "export", "--format", "jsonld", "--profile", "cco")
	require.NoError(t, err)
	assert.Contains(t, out, `"@graph"`)

	_, _, err = run(t, activityJSON, "export", "--profile", "owl")
	assert.Error(t, err)
}

func TestTriples(t *testing.T) {
	out, _, err := run(t, activityJSON, "triples")
	require.NoError(t, err)
	assert.Contains(t, out, `"activity.activity.verb"`)

	out, _, err = run(t, activityJSON, "triples", "--payload")
	require.NoError(t, err)
	assert.Contains(t, out, `"id":"urn:activity:1"`)
}

func TestShow(t *testing.T) {
	out, _, err := run(t, activityJSON, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# urn:activity:1")
	assert.Contains(t, out, "- **actor**: Alice")
	assert.Contains(t, out, "Hello **world**")
}

func TestMetricsFlag(t *testing.T) {
	_, errOut, err := run(t, activityJSON, "parse", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, errOut, "semactivity_codec_documents_decoded_total")
}

func TestInvalidFlags(t *testing.T) {
	_, _, err := run(t, "", "schema", "--log-level", "loud")
	assert.Error(t, err)

	_, _, err = run(t, "", "schema", "-m", "nope")
	assert.Error(t, err)
}

func TestStoreUnreachable(t *testing.T) {
	_, _, err := run(t, activityJSON, "store", "put", "--nats-url", "nats://127.0.0.1:1")
	assert.ErrorContains(t, err, "connect to NATS")

	_, _, err = run(t, "", "store", "list", "--bucket", "bad.bucket", "--nats-url", "nats://127.0.0.1:1")
	assert.Error(t, err)
}
