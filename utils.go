package bboxlabel

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Logger receives the diagnostic messages of the package. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

// discardLogger is used when no logger is supplied.
var discardLogger Logger = log.New(ioutil.Discard, "", 0)

// loggerOrDiscard returns l, or a logger that drops all messages if l is nil.
func loggerOrDiscard(l Logger) Logger {
	if l == nil {
		return discardLogger
	}
	return l
}

// filesByExtInDir returns all regular files found directly in directory dirPath whose extension
// matches one of exts, ignoring case. All files are returned if exts is empty. The result is
// sorted by file name.
func filesByExtInDir(dirPath string, exts []string) (files []string, err error) {
	// Open the directory.
	dirInfo, err := os.Stat(dirPath)
	if err != nil || !dirInfo.IsDir() {
		return nil, fmt.Errorf("cannot read directory %q: %v", dirPath, err)
	}
	dir, err := os.Open(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access %q: %v", dirPath, err)
	}
	defer closeWithErrCheck(dir, &err)

	hasExt := func(name string) bool {
		if len(exts) == 0 {
			return true
		}
		ext := strings.ToLower(filepath.Ext(name))
		for _, e := range exts {
			if ext == strings.ToLower(e) {
				return true
			}
		}
		return false
	}

	// Iterate over all files in dir.
	files = make([]string, 0, 100)
	var fileList []os.FileInfo
	for fileList, err = dir.Readdir(100); len(fileList) > 0; fileList, err = dir.Readdir(100) {
		for _, file := range fileList {
			name := file.Name()
			// Must be a regular file or a symlink and have one of the requested extensions.
			if (!file.Mode().IsRegular() && (file.Mode()&os.ModeSymlink == 0)) || !hasExt(name) {
				continue
			}
			files = append(files, filepath.Join(dirPath, name))
		}
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to list %q: %v", dirPath, err)
	}

	sort.Strings(files)
	return files, nil
}

// splitPath splits the given file path into the dir name, the base name without extension and the
// extension (without the dot).
func splitPath(path string) (dir, baseNoExt, ext string, err error) {
	dir, file := filepath.Split(path)
	ext = filepath.Ext(file)
	if ext == "" {
		return "", "", "", fmt.Errorf("missing file extension in %q", path)
	}

	dir = strings.TrimSuffix(dir, string(os.PathSeparator))
	baseNoExt = file[0 : len(file)-len(ext)]
	ext = ext[1:]

	return dir, baseNoExt, ext, nil
}

// baseNameNoExt returns the file name of path without directory and extension. Unlike splitPath
// it accepts paths without an extension.
func baseNameNoExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// mapFileNamesToExtensions maps the base names of the given file paths, with the file type
// extensions stripped off, to the file extension (without the dot).
func mapFileNamesToExtensions(filePaths []string, logger Logger) map[string]string {
	mapping := make(map[string]string, len(filePaths))
	for _, path := range filePaths {
		_, baseNoExt, ext, err := splitPath(path)
		if err != nil {
			logger.Printf("Skipping %q: %v", path, err)
			continue
		}
		mapping[baseNoExt] = ext
	}

	return mapping
}

// labelParserFn parses a label file given the label and image file paths and adds its content
// to the project.
type labelParserFn func(p *Project, labelPath, imagePath string) error

// parseLabelsWithOneToOneImages matches label files in labelDir, with file extension labelFileExt
// (e.g. ".json") by file name to images in imageDir (with an arbitrary file extension). It then
// invokes parse on these path pairs. Files that fail to parse are skipped with a warning.
func parseLabelsWithOneToOneImages(p *Project, labelDir, labelFileExt, imageDir string,
		parse labelParserFn, logger Logger) error {

	// Get the label file paths.
	labelFiles, err := filesByExtInDir(labelDir, []string{labelFileExt})
	if err != nil {
		return err
	}
	logger.Printf("Parsing labels for %d files", len(labelFiles))

	// Find the image files and create a map from base file name without ext to ext.
	imageFiles, err := filesByExtInDir(imageDir, nil)
	if err != nil {
		return err
	}
	imageNamesToExt := mapFileNamesToExtensions(imageFiles, logger)

	for _, labelPath := range labelFiles {
		// Find the corresponding image.
		baseNoExt := baseNameNoExt(labelPath)
		imageExt, found := imageNamesToExt[baseNoExt]
		if !found {
			logger.Printf("No corresponding image file, skipping %q", labelPath)
			continue
		}
		imagePath := filepath.Join(imageDir, baseNoExt+"."+imageExt)

		// Parse the label file.
		if err := parse(p, labelPath, imagePath); err != nil {
			logger.Printf("Error while parsing, skipping %q: %v", labelPath, err)
			continue
		}
	}

	return nil
}

// readLines returns a slice of lines read from the file at path.
func readLines(path string) (lines []string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %q: %v", path, err)
	}
	defer closeWithErrCheck(file, &err)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %q as lines: %v", path, err)
	}

	return lines, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames it over path, so that
// path either keeps its old content or has all of data.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	return writeAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// writeAtomic streams the output of write to a temporary file next to path and renames it over
// path once write, sync and close have succeeded. The temporary file is removed on failure.
func writeAtomic(path string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := ioutil.TempFile(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// closeWithErrCheck calls c.Close(). If it returns an error, and (*e == nil), e is set to that
// error.
func closeWithErrCheck(c io.Closer, e *error) {
	err := c.Close()
	if err != nil && *e == nil {
		*e = err
	}
}
