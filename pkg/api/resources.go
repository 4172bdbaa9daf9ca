package api

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PackSources bundles the per-role program files of an application into a
// tarball ready for upload. Each role contributes one src/app_{role}.py; the
// tarball is written next to them as {slug}.tar.gz.
func PackSources(applicationPath, slug string, roles []string) (string, error) {
	srcDir := filepath.Join(applicationPath, "src")
	tarballPath := filepath.Join(srcDir, slug+".tar.gz")

	out, err := os.Create(tarballPath)
	if err != nil {
		return "", fmt.Errorf("creating tarball: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, role := range roles {
		name := fmt.Sprintf("app_%s.py", strings.ToLower(role))
		if err := addFile(tw, filepath.Join(srcDir, name), name); err != nil {
			tw.Close()
			gz.Close()
			os.Remove(tarballPath)
			return "", err
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("finalizing tarball: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("finalizing tarball: %w", err)
	}
	return tarballPath, nil
}

func addFile(tw *tar.Writer, path, name string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("missing source file for role: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("tar header for %s: %w", path, err)
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("writing tar header: %w", err)
	}
	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// UnpackSources extracts a downloaded source tarball into the application's
// src directory and removes the tarball.
func UnpackSources(tarballPath, applicationPath string) error {
	srcDir := filepath.Join(applicationPath, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("creating src directory: %w", err)
	}

	file, err := os.Open(tarballPath)
	if err != nil {
		return fmt.Errorf("opening tarball: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("reading tarball: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tarball: %w", err)
		}

		// Entries are flat files packed by PackSources. Anything that
		// would escape the src directory is rejected.
		name := filepath.Clean(header.Name)
		if strings.Contains(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("unsafe tarball entry: %s", header.Name)
		}

		out, err := os.Create(filepath.Join(srcDir, name))
		if err != nil {
			return fmt.Errorf("extracting %s: %w", name, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("extracting %s: %w", name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("extracting %s: %w", name, err)
		}
	}

	return os.Remove(tarballPath)
}
