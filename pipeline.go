package inkpng

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultWorkers is the number of files rendered concurrently by Scan
// unless told otherwise.
const DefaultWorkers = 4

var errNoCatalog = errors.New("inkpng: no catalog")

func (i *InkPNG) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, except the base itself
			if file != base && info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			if !strings.EqualFold(filepath.Ext(file), ".png") {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (i *InkPNG) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			crc, err := crcFile(file)
			if err != nil {
				errc <- err
				return
			}

			frame, err := i.catalog.FindFrameByCRC(crc, i.width, i.height)
			if err != nil {
				errc <- err
				return
			}
			if frame != nil {
				i.logger.Debug().Str("file", file).Str("crc", crc).Msg("already cataloged")
				continue
			}

			// A file that fails to decode shouldn't stop the rest
			rec, b, err := i.renderFile(file, crc)
			if err != nil {
				i.logger.Warn().Err(err).Str("file", file).Msg("skipping")
				continue
			}

			if err := i.catalog.AddImage(rec, Frame{Width: i.width, Height: i.height, Data: b}); err != nil {
				errc <- err
				return
			}
			i.logger.Info().Str("file", file).Str("crc", crc).Msg("cataloged")
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks the directory tree at path and renders every PNG file whose
// frame isn't already in the catalog, using the given number of workers.
// Hidden files and directories are skipped.
func (i *InkPNG) Scan(path string, workers int) error {
	if i.catalog == nil {
		return errNoCatalog
	}
	if workers < 1 {
		workers = DefaultWorkers
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := i.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for n := 0; n < workers; n++ {
		errc, err := i.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
