package aliases

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
)

func newApp(t *testing.T, format string) *application.Mock {
	t.Helper()
	client, err := docsync.New(docsync.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	return &application.Mock{
		ClientFunc:       func(...docsync.Option) (docsync.Client, error) { return client, nil },
		OutputFormatFunc: func() string { return format },
	}
}

func execute(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAliases_JSON(t *testing.T) {
	out, err := execute(t, newApp(t, "json"))
	require.NoError(t, err)

	var got map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 6)
	assert.Equal(t, "id", got["doc_id"][0])
	assert.Contains(t, got["project"], "meta.project")
}

func TestAliases_YAMLOrder(t *testing.T) {
	out, err := execute(t, newApp(t, "yaml"))
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("doc_id:")), bytes.Index([]byte(out), []byte("amount:")))
}

func TestAliases_File(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "aliases.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
doc_id: [ref]
type: [kind]
counterparty: [party]
project: [proj]
expiry_date: [ends]
amount: [total]
`), 0o600))

	out, err := execute(t, newApp(t, "table"), "--file", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ref")
	assert.Contains(t, out, "ends")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("doc_id: [ref]\n"), 0o600))

	_, err = execute(t, newApp(t, "table"), "--file", bad)
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
