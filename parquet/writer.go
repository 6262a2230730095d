// Package parquet writes tables to columnar files under a lakes.Destination,
// partitioned hive-style by key columns.
package parquet

import (
	"bytes"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	pq "github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	lakes "github.com/stevemn/udacity-dengr-lakes"
)

// Write writes rows as the named table under dst. Rows are grouped by the
// values of the partition columns (named by their parquet tags, applied in
// order) and each group becomes one object at
//
//	<table>/<col>=<val>/.../part-00000.parquet
//
// With no partition columns the whole table is a single object at
// <table>/part-00000.parquet. Before a partition's object is put, every
// existing object under that partition path is deleted, so a rerun replaces
// touched partitions wholesale and never mixes old rows with new. Rows
// within a partition keep their input order. An empty rows slice touches
// nothing. All failures are WriteFailureErrors.
func Write[T any](dst lakes.Destination, table string, rows []T, partitionBy ...string) error {
	if len(rows) == 0 {
		return nil
	}
	fields, err := partitionFields[T](partitionBy)
	if err != nil {
		return errors.Wrapf(err, "resolving partition columns for %s", table)
	}

	groups := make(map[string][]T)
	for _, row := range rows {
		p, err := partitionPath(reflect.ValueOf(row), partitionBy, fields)
		if err != nil {
			return errors.Wrapf(err, "partitioning %s", table)
		}
		groups[p] = append(groups[p], row)
	}
	paths := make([]string, 0, len(groups))
	for p := range groups {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		prefix := table + "/"
		if p != "" {
			prefix += p + "/"
		}
		if err := clearPartition(dst, prefix); err != nil {
			return err
		}
		data, err := encode(groups[p])
		if err != nil {
			return &lakes.WriteFailureError{Key: prefix, Err: err}
		}
		key := prefix + "part-00000.parquet"
		if err := dst.Put(key, data); err != nil {
			return &lakes.WriteFailureError{Key: key, Err: err}
		}
	}
	return nil
}

func encode[T any](rows []T) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := pq.NewGenericWriter[T](buf, pq.Compression(&pq.Snappy))
	if _, err := w.Write(rows); err != nil {
		return nil, errors.Wrap(err, "encoding rows")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "closing parquet writer")
	}
	return buf.Bytes(), nil
}

func clearPartition(dst lakes.Destination, prefix string) error {
	stale, err := dst.List(prefix)
	if err != nil {
		return &lakes.WriteFailureError{Key: prefix, Err: err}
	}
	for _, key := range stale {
		if err := dst.Delete(key); err != nil {
			return &lakes.WriteFailureError{Key: key, Err: err}
		}
	}
	return nil
}

// partitionFields maps each partition column name to the index of the
// struct field carrying that name in its parquet tag.
func partitionFields[T any](cols []string) ([]int, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("rows must be structs, got %s", t.Kind())
	}
	indexes := make([]int, len(cols))
	for i, col := range cols {
		indexes[i] = -1
		for f := 0; f < t.NumField(); f++ {
			tag := t.Field(f).Tag.Get("parquet")
			name, _, _ := strings.Cut(tag, ",")
			if name == col {
				indexes[i] = f
				break
			}
		}
		if indexes[i] == -1 {
			return nil, errors.Errorf("no column %q in row type %s", col, t.Name())
		}
	}
	return indexes, nil
}

func partitionPath(row reflect.Value, cols []string, fields []int) (string, error) {
	segs := make([]string, len(cols))
	for i, f := range fields {
		val, err := encodeValue(row.Field(f))
		if err != nil {
			return "", errors.Wrapf(err, "column %q", cols[i])
		}
		segs[i] = cols[i] + "=" + val
	}
	return strings.Join(segs, "/"), nil
}

func encodeValue(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return url.PathEscape(v.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	default:
		return "", errors.Errorf("unsupported partition column kind %s", v.Kind())
	}
}
