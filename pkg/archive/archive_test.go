package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rdyn/pkg/config"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	bucket  string
	failOn  string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string]string)
	}
	f.bucket = aws.ToString(in.Bucket)
	f.objects[key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func runDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"interactions.txt":  "0\t1\t+\t0\t1\n",
		"events.txt":        "3:\tSTART\n",
		"communities-3.txt": "0\t[0, 1]\n",
		"graph-3.txt":       "0\t1\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestNewUploader_RequiresBucket(t *testing.T) {
	_, err := NewUploader(&fakeS3{}, "", "p", nil)
	require.ErrorIs(t, err, ErrNoBucket)
}

func TestUploadDir(t *testing.T) {
	client := &fakeS3{}
	u, err := NewUploader(client, "bench", "rdyn", nil)
	require.NoError(t, err)

	keys, err := u.UploadDir(context.Background(), runDir(t), "run-1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rdyn/run-1/communities-3.txt",
		"rdyn/run-1/events.txt",
		"rdyn/run-1/graph-3.txt",
		"rdyn/run-1/interactions.txt",
	}, keys)
	assert.Equal(t, "bench", client.bucket)
	assert.Equal(t, "3:\tSTART\n", client.objects["rdyn/run-1/events.txt"])
}

func TestUploadDir_Failure(t *testing.T) {
	client := &fakeS3{failOn: "run-2/events.txt"}
	u, err := NewUploader(client, "bench", "", nil)
	require.NoError(t, err)

	keys, err := u.UploadDir(context.Background(), runDir(t), "run-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, []string{"run-2/communities-3.txt"}, keys)
}

func TestUploadDir_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u, err := NewUploader(&fakeS3{}, "bench", "", nil)
	require.NoError(t, err)
	_, err = u.UploadDir(ctx, runDir(t), "run-3")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_Endpoint(t *testing.T) {
	client, err := NewClient(context.Background(), config.Archive{
		Bucket:    "bench",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	opts := client.Options()
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "us-east-1", opts.Region)

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key", creds.AccessKeyID)
}
