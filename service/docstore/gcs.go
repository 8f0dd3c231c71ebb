package docstore

import (
	"io/ioutil"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/xerrors"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/domain"
	"google.golang.org/api/iterator"
)

type GcsStoreCfg struct {
	Client     *storage.Client
	BucketName string
	// Prefix is prepended to every document name, so several deployments can
	// share one bucket.
	Prefix  string
	Timeout time.Duration
}

type gcsStore struct {
	client     *storage.Client
	bucketName string
	prefix     string
	ctxTimeout time.Duration
}

// NewGcsStore returns a domain.DocumentStore over a GCS bucket. Documents
// are whole objects; there is no partial update and no compare-and-swap.
func NewGcsStore(cfg *GcsStoreCfg) domain.DocumentStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &gcsStore{
		client:     cfg.Client,
		bucketName: cfg.BucketName,
		prefix:     cfg.Prefix,
		ctxTimeout: timeout,
	}
}

func (s *gcsStore) object(name string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucketName).Object(s.prefix + name)
}

func (s *gcsStore) Read(c bCtx.Ctx, name string) ([]byte, error) {
	ctx, cancel := bCtx.WithTimeout(c, s.ctxTimeout)
	defer cancel()

	r, err := s.object(name).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"name": name,
			"err":  err,
		}).Error("failed to open object reader")
		return nil, xerrors.Errorf("read %s: %w", name, domain.ErrStoreUnavailable)
	}
	defer r.Close()

	body, err := ioutil.ReadAll(r)
	if err != nil {
		ctx.WithFields(log.Fields{
			"name": name,
			"err":  err,
		}).Error("failed to read object")
		return nil, xerrors.Errorf("read %s: %w", name, domain.ErrStoreUnavailable)
	}
	return body, nil
}

func (s *gcsStore) Write(c bCtx.Ctx, name string, body []byte) error {
	ctx, cancel := bCtx.WithTimeout(c, s.ctxTimeout)
	defer cancel()

	w := s.object(name).NewWriter(ctx)
	w.ObjectAttrs.ContentType = "application/json"
	if _, err := w.Write(body); err != nil {
		ctx.WithFields(log.Fields{
			"name": name,
			"err":  err,
		}).Error("failed to write object")
		return xerrors.Errorf("write %s: %w", name, domain.ErrStoreUnavailable)
	}
	if err := w.Close(); err != nil {
		ctx.WithFields(log.Fields{
			"name": name,
			"err":  err,
		}).Error("failed to close object writer")
		return xerrors.Errorf("write %s: %w", name, domain.ErrStoreUnavailable)
	}
	return nil
}

func (s *gcsStore) List(c bCtx.Ctx, prefix string) ([]string, error) {
	ctx, cancel := bCtx.WithTimeout(c, s.ctxTimeout)
	defer cancel()

	it := s.client.Bucket(s.bucketName).Objects(ctx, &storage.Query{Prefix: s.prefix + prefix})
	names := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		} else if err != nil {
			ctx.WithFields(log.Fields{
				"prefix": prefix,
				"err":    err,
			}).Error("failed to iterate objects")
			return nil, xerrors.Errorf("list %s: %w", prefix, domain.ErrStoreUnavailable)
		}
		names = append(names, attrs.Name[len(s.prefix):])
	}
	return names, nil
}
