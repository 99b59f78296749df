package actions_test

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/n8n-backup/internal/actions"
	"github.com/nicholas-fedor/n8n-backup/internal/actions/mocks"
)

var _ = ginkgo.Describe("SelectContainers", func() {
	ctx := context.Background()

	ginkgo.It("should merge manual, detected and extra names without duplicates", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"a", "b"}})
		selected := actions.SelectContainers(ctx, client, []string{"a"}, true, "", []string{"b", "c"})
		gomega.Expect(selected).To(gomega.Equal([]string{"a", "b", "c"}))
	})

	ginkgo.It("should keep manual order and append detections in runtime order", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running: []string{"n8n-worker", "postgres", "N8N-Main", "redis"},
		})
		selected := actions.SelectContainers(ctx, client, []string{"custom"}, true, "n8n", nil)
		gomega.Expect(selected).To(gomega.Equal([]string{"custom", "n8n-worker", "N8N-Main"}))
	})

	ginkgo.It("should compare names case-sensitively when de-duplicating", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"N8N"}})
		selected := actions.SelectContainers(ctx, client, []string{"n8n"}, true, "n8n", nil)
		gomega.Expect(selected).To(gomega.Equal([]string{"n8n", "N8N"}))
	})

	ginkgo.It("should not query the runtime when auto-detection is off", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		selected := actions.SelectContainers(ctx, client, nil, false, "n8n", []string{"x"})
		gomega.Expect(selected).To(gomega.Equal([]string{"x"}))
	})

	ginkgo.It("should ignore empty names", func() {
		client := mocks.CreateMockClient(&mocks.TestData{})
		selected := actions.SelectContainers(ctx, client, []string{"", "a"}, false, "", []string{""})
		gomega.Expect(selected).To(gomega.Equal([]string{"a"}))
	})

	ginkgo.It("should fall back to manual and extra names when listing fails", func() {
		client := mocks.CreateMockClient(&mocks.TestData{ListErr: mocks.ErrRuntimeUnavailable})
		selected := actions.SelectContainers(ctx, client, []string{"a"}, true, "n8n", []string{"b"})
		gomega.Expect(selected).To(gomega.Equal([]string{"a", "b"}))
	})

	ginkgo.It("should return an empty selection when no source yields a name", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"postgres"}})
		selected := actions.SelectContainers(ctx, client, nil, true, "n8n", nil)
		gomega.Expect(selected).To(gomega.BeEmpty())
	})
})
