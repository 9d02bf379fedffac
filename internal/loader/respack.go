package loader

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	pkgerrors "github.com/pkg/errors"
)

// resourcePack is an open 7z archive with its file table indexed by
// normalized name. Legacy .dat packs are a 7z archive encrypted whole
// with AES-128-CTR; they are decrypted into memory on open.
type resourcePack struct {
	rc    io.Closer
	files map[string]*sevenzip.File
}

func openResourcePack(name, key string) (*resourcePack, error) {
	if strings.EqualFold(filepath.Ext(name), ".dat") {
		return openLegacyPack(name, key)
	}
	rc, err := sevenzip.OpenReaderWithPassword(name, key)
	if err != nil {
		return nil, err
	}
	return indexPack(rc, rc.File), nil
}

func openLegacyPack(name, key string) (*resourcePack, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if len(data) <= aes.BlockSize {
		return nil, pkgerrors.Wrap(ErrWrongFormat, name)
	}
	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:16])
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(data)-aes.BlockSize)
	cipher.NewCTR(block, data[:aes.BlockSize]).XORKeyStream(plain, data[aes.BlockSize:])

	r, err := sevenzip.NewReader(bytes.NewReader(plain), int64(len(plain)))
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: %v", name, err)
	}
	return indexPack(nil, r.File), nil
}

func indexPack(rc io.Closer, files []*sevenzip.File) *resourcePack {
	p := &resourcePack{
		rc:    rc,
		files: make(map[string]*sevenzip.File, len(files)),
	}
	for _, f := range files {
		p.files[normalize(f.Name)] = f
	}
	return p
}

func (p *resourcePack) len() int {
	return len(p.files)
}

func (p *resourcePack) read(name string) ([]byte, error) {
	f, ok := p.files[normalize(name)]
	if !ok {
		return nil, pkgerrors.Wrap(ErrFileNotFound, name)
	}
	r, err := f.Open()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open %s in pack", name)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (p *resourcePack) close() {
	if p.rc != nil {
		p.rc.Close()
	}
}

func normalize(name string) string {
	return path.Clean(strings.ToLower(strings.ReplaceAll(name, "\\", "/")))
}
