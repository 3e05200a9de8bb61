package inkpng

import (
	"crypto/sha1"
	"database/sql"
	"fmt"

	"github.com/bodgit/inkpng/png"
	_ "github.com/mattn/go-sqlite3"
)

// Record describes a PNG file that has been rendered.
type Record struct {
	Path   string
	CRC    string
	Header png.Header
}

// Frame is a rendered frame and the panel dimensions it was rendered for.
type Frame struct {
	Width  int
	Height int
	Data   []byte
}

// Catalog is a sqlite database of rendered images and their frames.
// Identical frames are only stored once.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens the catalog in the named file, creating it if needed.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// Workers share one connection so writes never contend for the lock
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS frame (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL, data BLOB NOT NULL)",
		"CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, crc TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL, bit_depth INTEGER NOT NULL, color_type INTEGER NOT NULL, interlace INTEGER NOT NULL)",
		"CREATE TABLE IF NOT EXISTS path (image_id INTEGER NOT NULL, path TEXT NOT NULL UNIQUE, FOREIGN KEY(image_id) REFERENCES image(id))",
		"CREATE TABLE IF NOT EXISTS rendering (image_id INTEGER NOT NULL, frame_id INTEGER NOT NULL, UNIQUE(image_id, frame_id), FOREIGN KEY(image_id) REFERENCES image(id), FOREIGN KEY(frame_id) REFERENCES frame(id))",
	} {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the catalog.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func addFrame(tx *sql.Tx, frame Frame) (int64, error) {
	sha := fmt.Sprintf("%X", sha1.Sum(frame.Data))

	var id int64
	switch err := tx.QueryRow("SELECT id FROM frame WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO frame (sha1, width, height, data) VALUES (?, ?, ?, ?)", sha, frame.Width, frame.Height, frame.Data)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

func addImage(tx *sql.Tx, crc string, h png.Header) (int64, error) {
	var id int64
	switch err := tx.QueryRow("SELECT id FROM image WHERE crc = ?", crc).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO image (crc, width, height, bit_depth, color_type, interlace) VALUES (?, ?, ?, ?, ?, ?)", crc, h.Width, h.Height, h.BitDepth, h.ColorType, h.InterlaceMethod)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// AddImage records the file described by rec and the frame it was
// rendered to. Adding a file again replaces its previous record.
func (c *Catalog) AddImage(rec Record, frame Frame) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	frameID, err := addFrame(tx, frame)
	if err != nil {
		return err
	}

	imageID, err := addImage(tx, rec.CRC, rec.Header)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO path (image_id, path) VALUES (?, ?)", imageID, rec.Path); err != nil {
		return err
	}

	if _, err := tx.Exec("INSERT OR IGNORE INTO rendering (image_id, frame_id) VALUES (?, ?)", imageID, frameID); err != nil {
		return err
	}

	return tx.Commit()
}

// FindFrameByCRC returns the frame rendered for a panel of the given
// dimensions from a file with the given checksum. It returns nil if
// there is none.
func (c *Catalog) FindFrameByCRC(crc string, width, height int) ([]byte, error) {
	var data []byte
	switch err := c.db.QueryRow("SELECT f.data FROM image AS i JOIN rendering AS r ON r.image_id = i.id JOIN frame AS f ON r.frame_id = f.id WHERE i.crc = ? AND f.width = ? AND f.height = ?", crc, width, height).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return data, nil
	default:
		return nil, err
	}
}

// Records returns every file in the catalog, ordered by path.
func (c *Catalog) Records() ([]Record, error) {
	rows, err := c.db.Query("SELECT p.path, i.crc, i.width, i.height, i.bit_depth, i.color_type, i.interlace FROM path AS p JOIN image AS i ON p.image_id = i.id ORDER BY p.path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Path, &rec.CRC, &rec.Header.Width, &rec.Header.Height, &rec.Header.BitDepth, &rec.Header.ColorType, &rec.Header.InterlaceMethod); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Frames returns every frame rendered for a panel of the given
// dimensions, keyed by the checksum of the file it was rendered from.
func (c *Catalog) Frames(width, height int) (map[string][]byte, error) {
	rows, err := c.db.Query("SELECT i.crc, f.data FROM image AS i JOIN rendering AS r ON r.image_id = i.id JOIN frame AS f ON r.frame_id = f.id WHERE f.width = ? AND f.height = ?", width, height)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := make(map[string][]byte)
	for rows.Next() {
		var crc string
		var data []byte
		if err := rows.Scan(&crc, &data); err != nil {
			return nil, err
		}
		frames[crc] = data
	}

	return frames, rows.Err()
}
