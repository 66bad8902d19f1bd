package gcsuploader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	bucket, object, err := ParseGCSURI("gs://spendsense-exports/exports/2024/06/messages.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "spendsense-exports", bucket)
	assert.Equal(t, "exports/2024/06/messages.jsonl", object)

	for _, bad := range []string{"", "s3://bucket/key", "gs://bucket", "gs://bucket/", "gs:///key"} {
		_, _, err := ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	assert.Equal(t, "messages.jsonl", ExtractFilenameFromGCSURI("gs://bucket/exports/2024/06/messages.jsonl"))
	assert.Equal(t, "file.jsonl", ExtractFilenameFromGCSURI("gs://bucket/file.jsonl"))
	assert.Equal(t, "bucket", ExtractFilenameFromGCSURI("gs://bucket"))
}

func TestExportObjectName(t *testing.T) {
	now := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "exports/2024/06/sms.jsonl", ExportObjectName("/home/me/Downloads/sms.jsonl", now))
	assert.Equal(t, "exports/2024/06/sms.jsonl", ExportObjectName(`C:\exports\sms.jsonl`, now))
}
