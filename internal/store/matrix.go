package store

import (
	"bufio"
	"encoding/gob"
	"os"

	wikierrors "github.com/knowhub/wikidex/internal/errors"
)

// matrixFile is the gob payload for a version's embedding matrix. Rows are
// flattened into one slice; Rows*Dims must match len(Data) or the file is
// treated as corrupt.
type matrixFile struct {
	Rows int
	Dims int
	Data []float32
}

// saveMatrix writes the matrix to a temp file and renames it into place.
func saveMatrix(path string, matrix [][]float32, dims int) error {
	mf := matrixFile{Rows: len(matrix), Dims: dims}
	mf.Data = make([]float32, 0, len(matrix)*dims)
	for _, row := range matrix {
		mf.Data = append(mf.Data, row...)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return wikierrors.StorageError("create matrix file", err)
	}

	w := bufio.NewWriter(file)
	if err := gob.NewEncoder(w).Encode(mf); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return wikierrors.StorageError("encode matrix", err)
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return wikierrors.StorageError("flush matrix", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return wikierrors.StorageError("close matrix file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return wikierrors.StorageError("rename matrix file", err)
	}
	return nil
}

// loadMatrix reads an embedding matrix from disk. wantRows is the chunk
// count recorded in the manifest; any mismatch means the file does not
// belong to this version and is reported as corrupt.
func loadMatrix(path string, wantRows, wantDims int) ([][]float32, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wikierrors.New(wikierrors.ErrCodeMatrixCorrupt, "matrix file missing", err).
				WithDetail("path", path)
		}
		return nil, wikierrors.StorageError("open matrix file", err)
	}
	defer file.Close()

	var mf matrixFile
	if err := gob.NewDecoder(bufio.NewReader(file)).Decode(&mf); err != nil {
		return nil, wikierrors.New(wikierrors.ErrCodeMatrixCorrupt, "decode matrix", err).
			WithDetail("path", path)
	}

	if mf.Rows != wantRows || mf.Dims != wantDims || len(mf.Data) != mf.Rows*mf.Dims {
		return nil, wikierrors.New(wikierrors.ErrCodeMatrixCorrupt, "matrix shape mismatch", nil).
			WithDetail("path", path)
	}

	matrix := make([][]float32, mf.Rows)
	for i := range matrix {
		matrix[i] = mf.Data[i*mf.Dims : (i+1)*mf.Dims : (i+1)*mf.Dims]
	}
	return matrix, nil
}
