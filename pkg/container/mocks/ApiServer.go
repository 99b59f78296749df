package mocks

import (
	"archive/tar"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

// Call stack offset for Gomega assertions in nested calls.
const assertionOffset = 2

// pathStatHeader carries the stat of a copied path on archive responses.
const pathStatHeader = "X-Docker-Container-Path-Stat"

// ListContainersHandler serves the given names as running containers for a status=running list request.
func ListContainersHandler(names ...string) http.HandlerFunc {
	filterArgs := filters.NewArgs(filters.Arg("status", "running"))
	filterJSON, err := filterArgs.MarshalJSON()
	gomega.ExpectWithOffset(1, err).ShouldNot(gomega.HaveOccurred())

	query := url.Values{
		"filters": []string{string(filterJSON)},
	}

	summaries := make([]container.Summary, 0, len(names))
	for i, name := range names {
		summaries = append(summaries, container.Summary{
			ID:    fmt.Sprintf("%012d", i+1),
			Names: []string{"/" + name},
			State: "running",
		})
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("GET", gomega.HaveSuffix("containers/json"), query.Encode()),
		ghttp.RespondWithJSONEncoded(http.StatusOK, summaries),
	)
}

// InspectContainerHandler responds to an inspect request with the given running state.
func InspectContainerHandler(name string, running bool) http.HandlerFunc {
	info := container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			ID:    "0123456789",
			Name:  "/" + name,
			State: &container.State{Running: running},
		},
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("GET", gomega.HaveSuffix("containers/%s/json", name)),
		ghttp.RespondWithJSONEncoded(http.StatusOK, info),
	)
}

// MissingContainerHandler responds to an inspect request with a 404.
func MissingContainerHandler(name string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("GET", gomega.HaveSuffix("containers/%s/json", name)),
		containerNotFoundResponse(name),
	)
}

// ServerErrorHandler responds to any request with a 500.
func ServerErrorHandler() http.HandlerFunc {
	return ghttp.RespondWithJSONEncoded(
		http.StatusInternalServerError,
		map[string]string{"message": "daemon unavailable"},
	)
}

// ArchiveHandler serves a directory archive for srcPath holding the given files.
//
// Entries are rooted at the base name of srcPath, matching what the daemon sends.
func ArchiveHandler(name, srcPath string, files map[string]string) http.HandlerFunc {
	root := path.Base(srcPath)
	body := tarDirectory(root, files)

	stat, err := json.Marshal(container.PathStat{
		Name: root,
		Mode: os.ModeDir | 0o755,
	})
	gomega.ExpectWithOffset(1, err).ShouldNot(gomega.HaveOccurred())

	header := http.Header{}
	header.Set(pathStatHeader, base64.StdEncoding.EncodeToString(stat))
	header.Set("Content-Type", "application/x-tar")

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(
			"GET",
			gomega.HaveSuffix("containers/%s/archive", name),
			url.Values{"path": []string{srcPath}}.Encode(),
		),
		ghttp.RespondWith(http.StatusOK, body, header),
	)
}

// RawArchiveHandler serves an arbitrary tar body for a directory named root.
func RawArchiveHandler(name, root string, body []byte) http.HandlerFunc {
	stat, err := json.Marshal(container.PathStat{Name: root, Mode: os.ModeDir | 0o755})
	gomega.ExpectWithOffset(1, err).ShouldNot(gomega.HaveOccurred())

	header := http.Header{}
	header.Set(pathStatHeader, base64.StdEncoding.EncodeToString(stat))

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("GET", gomega.HaveSuffix("containers/%s/archive", name)),
		ghttp.RespondWith(http.StatusOK, body, header),
	)
}

// tarDirectory builds a tar stream with a root directory entry followed by the files in name order.
func tarDirectory(root string, files map[string]string) []byte {
	var buf bytes.Buffer

	writer := tar.NewWriter(&buf)

	gomega.ExpectWithOffset(assertionOffset, writer.WriteHeader(&tar.Header{
		Name:     root + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
	})).To(gomega.Succeed())

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		content := files[name]
		gomega.ExpectWithOffset(assertionOffset, writer.WriteHeader(&tar.Header{
			Name:     root + "/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		})).To(gomega.Succeed())

		_, err := writer.Write([]byte(content))
		gomega.ExpectWithOffset(assertionOffset, err).ShouldNot(gomega.HaveOccurred())
	}

	gomega.ExpectWithOffset(assertionOffset, writer.Close()).To(gomega.Succeed())

	return buf.Bytes()
}

// Includes a standard "No such container" message with the name.
func containerNotFoundResponse(name string) http.HandlerFunc {
	return ghttp.RespondWithJSONEncoded(
		http.StatusNotFound,
		map[string]string{"message": "No such container: " + name},
	)
}
