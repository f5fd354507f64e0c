package address

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/model"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
)

const decodeBufferSize = 64 * 1024

// Decode reads a gzipped JSON object keyed by node code:
//
//	{"01": {"name_with_type": "Thành phố Hà Nội", "code": "01", "parent_code": null}, ...}
//
// Codes may be strings or numbers. The key wins when it disagrees with the
// embedded code. Nodes without a name are labelled "<Level> <code>".
func Decode(ctx context.Context, r io.Reader, level model.AddressLevel) ([]model.AddressNode, error) {
	gz, err := pgzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var nodes []model.AddressNode
	d := jx.Decode(gz, decodeBufferSize)
	err = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		code, err := strconv.Atoi(strings.TrimSpace(string(key)))
		if err != nil {
			return errors.Wrapf(err, "invalid code %q", key)
		}
		node, err := decodeNode(d, level, code)
		if err != nil {
			return errors.Wrapf(err, "node %d", code)
		}
		nodes = append(nodes, node)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func decodeNode(d *jx.Decoder, level model.AddressLevel, code int) (model.AddressNode, error) {
	node := model.AddressNode{Level: level, Code: code}
	var name, nameWithType string

	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "name_with_type":
			s, err := d.Str()
			nameWithType = s
			return err
		case "name":
			s, err := d.Str()
			name = s
			return err
		case "parent_code":
			parent, ok, err := decodeCode(d)
			if err != nil {
				return errors.Wrap(err, "parent_code")
			}
			if ok {
				node.ParentCode = &parent
			}
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return node, err
	}

	switch {
	case nameWithType != "":
		node.Name = nameWithType
	case name != "":
		node.Name = name
	default:
		node.Name = fmt.Sprintf("%s %d", levelEntities[level], code)
	}
	return node, nil
}

// decodeCode reads a code given as a number, a numeric string or null.
func decodeCode(d *jx.Decoder) (int, bool, error) {
	switch d.Next() {
	case jx.Null:
		return 0, false, d.Null()
	case jx.Number:
		v, err := d.Int()
		return v, err == nil, err
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, false, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, false, err
		}
		return v, true, nil
	default:
		return 0, false, errors.Errorf("unexpected %s", d.Next())
	}
}
