package inkpng

import (
	"fmt"
	"io"
	"os"

	"github.com/bodgit/inkpng/crc32"
)

func crcFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := crc32.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%.*X", h.Size()<<1, h.Sum(nil)), nil
}
