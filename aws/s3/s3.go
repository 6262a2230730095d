// Package s3 reads raw records from, and writes table files to, an S3
// bucket. Credentials are handed in explicitly through Config rather than
// read from process-wide state, so two pipelines in one process can talk to
// two accounts.
package s3

import (
	"bytes"
	"io"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	lakes "github.com/stevemn/udacity-dengr-lakes"
)

// Config carries the storage backend credentials and region. Leaving the
// key fields empty falls back to the SDK's default credential chain, which
// is what you want on instances with a role attached.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

func (c Config) session() (*session.Session, error) {
	cfg := &aws.Config{Region: aws.String(c.Region)}
	if c.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(c.AccessKeyID, c.SecretAccessKey, "")
	}
	return session.NewSession(cfg)
}

// ParseURL splits an s3://bucket/prefix location string into bucket and
// prefix.
func ParseURL(loc string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(loc, "s3://")
	if !ok {
		return "", "", errors.Errorf("location %q is not an s3:// url", loc)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", errors.Errorf("location %q has no bucket", loc)
	}
	return bucket, prefix, nil
}

// RawSource is a lakes.RawSource over the objects beneath an S3 prefix.
// The object listing is sorted by key, so enumeration order, and with it
// surrogate key assignment downstream, does not depend on how S3 pages the
// listing back.
type RawSource struct {
	bucket string
	prefix string

	s3     *s3.S3
	keys   []string
	keyIdx *uint64
}

// NewRawSource lists the objects under prefix in bucket and returns a
// RawSource over them. A listing failure is a SourceUnavailableError.
func NewRawSource(cfg Config, bucket, prefix string) (*RawSource, error) {
	sess, err := cfg.session()
	if err != nil {
		return nil, &lakes.SourceUnavailableError{Location: "s3://" + bucket + "/" + prefix, Err: err}
	}
	idx := uint64(0)
	rs := &RawSource{
		bucket: bucket,
		prefix: prefix,
		s3:     s3.New(sess),
		keyIdx: &idx,
	}
	err = rs.s3.ListObjectsV2Pages(
		&s3.ListObjectsV2Input{Bucket: aws.String(bucket), Prefix: aws.String(prefix)},
		func(page *s3.ListObjectsV2Output, last bool) bool {
			for _, obj := range page.Contents {
				rs.keys = append(rs.keys, *obj.Key)
			}
			return true
		})
	if err != nil {
		return nil, &lakes.SourceUnavailableError{Location: "s3://" + bucket + "/" + prefix, Err: err}
	}
	sort.Strings(rs.keys)
	return rs, nil
}

// NextReader fetches the next object and returns a reader over its body, or
// io.EOF when the listing is exhausted.
func (rs *RawSource) NextReader() (lakes.NamedReadCloser, error) {
	idx := atomic.AddUint64(rs.keyIdx, 1) - 1
	if int(idx) >= len(rs.keys) {
		return nil, io.EOF
	}
	key := rs.keys[idx]
	result, err := rs.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %v", key)
	}
	return &objReader{name: key, body: result.Body}, nil
}

type objReader struct {
	name string
	body io.ReadCloser
}

func (o *objReader) Read(buf []byte) (n int, err error) {
	return o.body.Read(buf)
}

func (o *objReader) Close() error {
	return o.body.Close()
}

func (o *objReader) Name() string {
	return o.name
}

// Destination is a lakes.Destination beneath an S3 prefix. A Put is a
// single PutObject call, which S3 applies atomically, so partial table
// files are never visible.
type Destination struct {
	bucket string
	prefix string
	s3     *s3.S3
}

// NewDestination returns a Destination writing under prefix in bucket.
func NewDestination(cfg Config, bucket, prefix string) (*Destination, error) {
	sess, err := cfg.session()
	if err != nil {
		return nil, errors.Wrap(err, "getting aws session")
	}
	return &Destination{bucket: bucket, prefix: prefix, s3: s3.New(sess)}, nil
}

// Put writes data at key below the destination prefix.
func (d *Destination) Put(key string, data []byte) error {
	_, err := d.s3.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path.Join(d.prefix, key)),
		Body:   bytes.NewReader(data),
	})
	return errors.Wrapf(err, "putting %s", key)
}

// List returns the keys under prefix, relative to the destination prefix,
// in lexicographic order.
func (d *Destination) List(prefix string) ([]string, error) {
	full := path.Join(d.prefix, prefix)
	if strings.HasSuffix(prefix, "/") {
		full += "/"
	}
	var keys []string
	err := d.s3.ListObjectsV2Pages(
		&s3.ListObjectsV2Input{Bucket: aws.String(d.bucket), Prefix: aws.String(full)},
		func(page *s3.ListObjectsV2Output, last bool) bool {
			for _, obj := range page.Contents {
				key := strings.TrimPrefix(*obj.Key, d.prefix)
				keys = append(keys, strings.TrimPrefix(key, "/"))
			}
			return true
		})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the object at key below the destination prefix. S3 treats
// deleting a missing key as success, which suits overwrite semantics fine.
func (d *Destination) Delete(key string) error {
	_, err := d.s3.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(path.Join(d.prefix, key)),
	})
	return errors.Wrapf(err, "deleting %s", key)
}
