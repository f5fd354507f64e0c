//go:build ignore

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/address"

	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
)

type sampleNode struct {
	code       string
	name       string
	kind       string
	parentCode string
}

// generateSampleAddresses writes a small address dataset in the same
// layout as the published one: one gzipped JSON object per level, keyed by
// zero-padded code. Run with: go run scripts/generate_sample_addresses.go
func main() {
	dataDir := "data/address"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	datasets := []struct {
		file  string
		nodes []sampleNode
	}{
		{
			file: address.CityFile,
			nodes: []sampleNode{
				{code: "01", name: "Hà Nội", kind: "Thành phố"},
				{code: "31", name: "Hải Phòng", kind: "Thành phố"},
				{code: "48", name: "Đà Nẵng", kind: "Thành phố"},
				{code: "79", name: "Hồ Chí Minh", kind: "Thành phố"},
			},
		},
		{
			file: address.DistrictFile,
			nodes: []sampleNode{
				{code: "001", name: "Ba Đình", kind: "Quận", parentCode: "01"},
				{code: "005", name: "Cầu Giấy", kind: "Quận", parentCode: "01"},
				{code: "303", name: "Hồng Bàng", kind: "Quận", parentCode: "31"},
				{code: "490", name: "Liên Chiểu", kind: "Quận", parentCode: "48"},
				{code: "760", name: "1", kind: "Quận", parentCode: "79"},
			},
		},
		{
			file: address.WardFile,
			nodes: []sampleNode{
				{code: "00001", name: "Phúc Xá", kind: "Phường", parentCode: "001"},
				{code: "00004", name: "Trúc Bạch", kind: "Phường", parentCode: "001"},
				{code: "00157", name: "Nghĩa Đô", kind: "Phường", parentCode: "005"},
				{code: "11296", name: "Quán Toan", kind: "Phường", parentCode: "303"},
				{code: "20194", name: "Hòa Hiệp Bắc", kind: "Phường", parentCode: "490"},
				{code: "26734", name: "Tân Định", kind: "Phường", parentCode: "760"},
			},
		},
	}

	for _, ds := range datasets {
		filePath := filepath.Join(dataDir, ds.file)

		if err := writeDataset(filePath, ds.nodes); err != nil {
			log.Fatalf("Failed to create %s: %v", ds.file, err)
		}

		fmt.Printf("Created %s with %d entries\n", filePath, len(ds.nodes))
	}

	fmt.Println("\nSample address dataset created successfully!")
	fmt.Println("Import it with: go run ./cmd/seed-address")
}

func writeDataset(filePath string, nodes []sampleNode) error {
	var e jx.Encoder
	e.ObjStart()
	for _, n := range nodes {
		e.FieldStart(n.code)
		e.Obj(func(e *jx.Encoder) {
			e.Field("name", func(e *jx.Encoder) { e.Str(n.name) })
			e.Field("type", func(e *jx.Encoder) { e.Str(n.kind) })
			e.Field("name_with_type", func(e *jx.Encoder) { e.Str(n.kind + " " + n.name) })
			e.Field("code", func(e *jx.Encoder) { e.Str(n.code) })
			e.Field("parent_code", func(e *jx.Encoder) {
				if n.parentCode == "" {
					e.Null()
					return
				}
				e.Str(n.parentCode)
			})
		})
	}
	e.ObjEnd()

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := pgzip.NewWriter(file)
	if _, err := gzipWriter.Write(e.Bytes()); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return gzipWriter.Close()
}
