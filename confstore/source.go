package confstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var (
	ErrorNoBucket          = errors.New("A bucket entry is required in the connection string")
	ErrorBadConnectionPair = errors.New("Connection string entries must be key=value pairs")
)

// Source represents a place configuration data can be read from,
// potentially outside the running process.
type Source interface {
	// Location returns a string identifying where this Source
	// gets its data from
	Location() string

	// Open returns a ReadCloser that reads this source's data.
	Open() (io.ReadCloser, error)
}

// ReadAll reads the entire source into a single byte slice,
// returning any error that occurred.
func ReadAll(source Source) ([]byte, error) {
	reader, err := source.Open()
	if err != nil {
		return nil, err
	}

	defer reader.Close()
	return ioutil.ReadAll(reader)
}

// File is a Source backed by a local filesystem path.  File sources are the
// only kind of Source that a Store will watch for changes.
type File struct {
	Path string
}

func (f *File) Location() string {
	return f.Path
}

func (f *File) Open() (reader io.ReadCloser, err error) {
	reader, err = os.Open(f.Path)
	if err != nil && reader != nil {
		reader.Close()
		reader = nil
	}

	return
}

type readCloserAdapter struct {
	io.Reader
}

func (a readCloserAdapter) Close() error {
	return nil
}

// Data is an in-memory Source, primarily useful for testing and for
// configuration supplied through some other channel.
type Data struct {
	Source []byte
}

func (d *Data) Location() string {
	return "data"
}

func (d *Data) Open() (io.ReadCloser, error) {
	return readCloserAdapter{bytes.NewReader(d.Source)}, nil
}

// connectionInfo holds the parsed fields of a storage connection string.
type connectionInfo struct {
	bucket    string
	region    string
	accessKey string
	secretKey string
	endpoint  string
}

// parseConnectionString parses a storage connection string of the form
// "bucket=foo;region=us-east-1;accessKey=AKIA...;secretKey=...;endpoint=...".
// Keys are case-insensitive.  Only bucket is required.
func parseConnectionString(value string) (info connectionInfo, err error) {
	for _, pair := range strings.Split(value, ";") {
		if len(strings.TrimSpace(pair)) == 0 {
			continue
		}

		eq := strings.Index(pair, "=")
		if eq < 1 {
			return connectionInfo{}, ErrorBadConnectionPair
		}

		key, v := strings.TrimSpace(pair[:eq]), strings.TrimSpace(pair[eq+1:])
		switch strings.ToLower(key) {
		case "bucket":
			info.bucket = v
		case "region":
			info.region = v
		case "accesskey":
			info.accessKey = v
		case "secretkey":
			info.secretKey = v
		case "endpoint":
			info.endpoint = v
		default:
			return connectionInfo{}, fmt.Errorf("Unrecognized connection string key: %s", key)
		}
	}

	if len(info.bucket) == 0 {
		return connectionInfo{}, ErrorNoBucket
	}

	return
}

// Blob is a Source backed by a remote blob store.  The blob is identified by
// a connection string naming the bucket plus credentials, and by the blob's
// path within that bucket.  Blob sources are read exactly once and never watched.
type Blob struct {
	// ConnectionString identifies the bucket and the credentials used to reach it.
	// See parseConnectionString for the accepted format.
	ConnectionString string

	// Path is the blob's key within the bucket.
	Path string

	// S3 is the service client used to fetch the blob.  If unset, a client is
	// constructed from the connection string.  This field exists primarily
	// to allow injection of mocks during testing.
	S3 s3iface.S3API
}

func (b *Blob) Location() string {
	if info, err := parseConnectionString(b.ConnectionString); err == nil {
		return fmt.Sprintf("s3://%s/%s", info.bucket, b.Path)
	}

	return b.Path
}

func (b *Blob) client(info connectionInfo) (s3iface.S3API, error) {
	if b.S3 != nil {
		return b.S3, nil
	}

	config := aws.NewConfig()
	if len(info.region) > 0 {
		config = config.WithRegion(info.region)
	}

	if len(info.endpoint) > 0 {
		config = config.WithEndpoint(info.endpoint).WithS3ForcePathStyle(true)
	}

	if len(info.accessKey) > 0 {
		config = config.WithCredentials(
			credentials.NewStaticCredentials(info.accessKey, info.secretKey, ""),
		)
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, err
	}

	return s3.New(sess), nil
}

func (b *Blob) Open() (io.ReadCloser, error) {
	info, err := parseConnectionString(b.ConnectionString)
	if err != nil {
		return nil, err
	}

	svc, err := b.client(info)
	if err != nil {
		return nil, err
	}

	output, err := svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(info.bucket),
		Key:    aws.String(b.Path),
	})

	if err != nil {
		return nil, err
	}

	return output.Body, nil
}
