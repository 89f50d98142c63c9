package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsResolve(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		object    string
		format    Format
		delimiter rune
		wantErr   bool
	}{
		{name: "csv defaults to comma", object: "data/a.csv", format: FormatDelimited, delimiter: ','},
		{name: "tsv defaults to tab", object: "data/a.TSV", format: FormatDelimited, delimiter: '\t'},
		{name: "explicit delimiter wins", opts: Options{Delimiter: ';'}, object: "a.tsv", format: FormatDelimited, delimiter: ';'},
		{name: "xlsx by extension", object: "report.xlsx", format: FormatXLSX},
		{name: "explicit format wins", opts: Options{Format: FormatDelimited}, object: "report.xlsx", format: FormatDelimited, delimiter: ','},
		{name: "no extension", object: "data/blob", format: FormatDelimited, delimiter: ','},
		{name: "unknown format", opts: Options{Format: "parquet"}, object: "a", wantErr: true},
		{name: "quote delimiter", opts: Options{Delimiter: '"'}, object: "a.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)

			got, err := tt.opts.Resolve(tt.object)
			if tt.wantErr {
				assert.Error(err)
				return
			}

			assert.NoError(err)
			assert.Equal(tt.format, got.Format)
			assert.Equal(tt.delimiter, got.Delimiter)
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{in: "", want: 0},
		{in: ",", want: ','},
		{in: ";", want: ';'},
		{in: `\t`, want: '\t'},
		{in: "tab", want: '\t'},
		{in: "|", want: '|'},
		{in: ",,", wantErr: true},
		{in: `"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert := require.New(t)

			got, err := ParseDelimiter(tt.in)
			if tt.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestNewRejectsRaggedRows(t *testing.T) {
	assert := require.New(t)

	_, err := New([]string{"a", "b"}, []string{"1", "2"}, []string{"3"})
	assert.ErrorIs(err, ErrRaggedRow)
	assert.Contains(err.Error(), "row 2")
}

func TestColumn(t *testing.T) {
	assert := require.New(t)

	tbl, err := New([]string{"name", "size"}, []string{"a", "1"}, []string{"b", "2"})
	assert.NoError(err)

	sizes, ok := tbl.Column("size")
	assert.True(ok)
	assert.Equal([]string{"1", "2"}, sizes)

	_, ok = tbl.Column("missing")
	assert.False(ok)
}

func TestReadDelimited(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter rune
		want      *Table
		wantErr   error
	}{
		{
			name:      "comma",
			input:     "name,size\na.txt,1\nb.txt,22\n",
			delimiter: ',',
			want:      &Table{Columns: []string{"name", "size"}, Rows: [][]string{{"a.txt", "1"}, {"b.txt", "22"}}},
		},
		{
			name:      "semicolon with quoted field",
			input:     "name;note\na;\"x;y\"\n",
			delimiter: ';',
			want:      &Table{Columns: []string{"name", "note"}, Rows: [][]string{{"a", "x;y"}}},
		},
		{
			name:      "byte order mark is dropped",
			input:     "\ufeffcol\nv\n",
			delimiter: ',',
			want:      &Table{Columns: []string{"col"}, Rows: [][]string{{"v"}}},
		},
		{
			name:      "header only",
			input:     "a,b\n",
			delimiter: ',',
			want:      &Table{Columns: []string{"a", "b"}},
		},
		{
			name:      "empty",
			input:     "",
			delimiter: ',',
			want:      &Table{},
		},
		{
			name:      "not utf-8",
			input:     "a,b\n\xff\xfe,1\n",
			delimiter: ',',
			wantErr:   ErrInvalidEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)

			got, err := ReadDelimited(strings.NewReader(tt.input), tt.delimiter)
			if tt.wantErr != nil {
				assert.ErrorIs(err, tt.wantErr)
				return
			}

			assert.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestReadDelimitedRaggedRecord(t *testing.T) {
	assert := require.New(t)

	_, err := ReadDelimited(strings.NewReader("a,b\n1\n"), ',')
	assert.Error(err)
	assert.Contains(err.Error(), "failed to parse table")
}

func TestWriteDelimitedHonoursDelimiter(t *testing.T) {
	assert := require.New(t)

	tbl, err := New([]string{"name", "size"}, []string{"a.txt", "1"}, []string{"b,c", "2"})
	assert.NoError(err)

	var buf bytes.Buffer
	assert.NoError(WriteDelimited(&buf, tbl, '\t'))
	assert.Equal("name\tsize\na.txt\t1\nb,c\t2\n", buf.String())

	back, err := ReadDelimited(&buf, '\t')
	assert.NoError(err)
	assert.Equal(tbl, back)
}

func TestWriteDelimitedRejectsRaggedRows(t *testing.T) {
	assert := require.New(t)

	tbl := &Table{Columns: []string{"a"}, Rows: [][]string{{"1", "2"}}}

	err := WriteDelimited(&bytes.Buffer{}, tbl, ',')
	assert.ErrorIs(err, ErrRaggedRow)
}

func TestXLSX(t *testing.T) {
	assert := require.New(t)

	tbl, err := New([]string{"name", "size", "note"},
		[]string{"a.txt", "1", ""},
		[]string{"b.txt", "22", "big"},
	)
	assert.NoError(err)

	var buf bytes.Buffer
	assert.NoError(WriteXLSX(&buf, tbl, ""))

	back, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "")
	assert.NoError(err)
	assert.Equal(tbl.Columns, back.Columns)
	assert.Equal(tbl.Rows, back.Rows, "trailing empty cells are padded back")
}

func TestXLSXNamedSheet(t *testing.T) {
	assert := require.New(t)

	tbl, err := New([]string{"k"}, []string{"v"})
	assert.NoError(err)

	var buf bytes.Buffer
	assert.NoError(WriteXLSX(&buf, tbl, "Objects"))

	back, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "Objects")
	assert.NoError(err)
	assert.Equal(tbl, back)

	_, err = ReadXLSX(bytes.NewReader(buf.Bytes()), "Missing")
	assert.Error(err)
}

func TestReadWriteDispatch(t *testing.T) {
	assert := require.New(t)

	tbl, err := New([]string{"a", "b"}, []string{"1", "2"})
	assert.NoError(err)

	for _, name := range []string{"t.csv", "t.tsv", "t.xlsx"} {
		opts, err := Options{}.Resolve(name)
		assert.NoError(err)

		var buf bytes.Buffer
		assert.NoError(Write(&buf, tbl, opts), name)

		back, err := Read(bytes.NewReader(buf.Bytes()), opts)
		assert.NoError(err, name)
		assert.Equal(tbl, back, name)
	}
}
