package address

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pgzip.NewWriter(&buf)
	_, err := w.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeDatasetFile(t *testing.T, dir, name, payload string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, gzipBytes(t, payload), 0o644))
	return path
}

const (
	citiesJSON = `{
		"01": {"name": "Hà Nội", "name_with_type": "Thành phố Hà Nội", "code": "01", "parent_code": null},
		"79": {"name": "Hồ Chí Minh", "name_with_type": "Thành phố Hồ Chí Minh", "code": "79"}
	}`
	districtsJSON = `{
		"001": {"name_with_type": "Quận Ba Đình", "code": "001", "parent_code": "01"},
		"760": {"code": 760, "parent_code": 79}
	}`
	wardsJSON = `{
		"00001": {"name_with_type": "Phường Phúc Xá", "code": "00001", "parent_code": "001"},
		"26734": {"name_with_type": "Phường Tân Định", "code": "26734", "parent_code": "760"}
	}`
)

func intPtr(v int) *int { return &v }
