package records

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/conet/pkg/errors"
)

const contributors = `project,contributor,country
P1,A,US
P1,B,US
P1,C,FR
`

func TestRead(t *testing.T) {
	tbl, err := Read(strings.NewReader(contributors), Format{}, 3)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
	want := Record{"P1", "C", "FR"}
	if !slices.Equal(tbl.Records[2], want) {
		t.Errorf("Records[2] = %v, want %v", tbl.Records[2], want)
	}
	if !slices.Equal(tbl.Lines, []int{2, 3, 4}) {
		t.Errorf("Lines = %v, want [2 3 4]", tbl.Lines)
	}
}

func TestReadSkipsHeaderAndBlankLines(t *testing.T) {
	input := "a,b\r\n\r\nx,y\r\n   \nz,w"
	tbl, err := Read(strings.NewReader(input), Format{}, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	if tbl.Records[0][1] != "y" {
		t.Errorf("trailing CR not stripped: %q", tbl.Records[0][1])
	}
	if tbl.Lines[1] != 5 {
		t.Errorf("Lines[1] = %d, want 5", tbl.Lines[1])
	}
}

func TestReadHeaderOnly(t *testing.T) {
	tbl, err := Read(strings.NewReader("project,contributor\n"), Format{}, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("Len = %d, want 0", tbl.Len())
	}
}

func TestReadShortLine(t *testing.T) {
	input := "h1,h2,h3\nP1,A,US\nP2\n"
	_, err := Read(strings.NewReader(input), Format{}, 3)
	if err == nil {
		t.Fatal("expected error for short line")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error should name line 3: %v", err)
	}
}

func TestReadCustomDelimiter(t *testing.T) {
	input := "g\tn\ng1\ta\ng1\tb\n"
	tbl, err := Read(strings.NewReader(input), Format{Delimiter: "\t"}, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := tbl.Records[1][1]; got != "b" {
		t.Errorf("Records[1][1] = %q, want b", got)
	}
}

func TestReadTabKeepsEmptyEdgeFields(t *testing.T) {
	input := "g\tn\tc\n\tA\tUS\nP1\tB\t\r\n  P2\tC\tFR  \n"
	tbl, err := Read(strings.NewReader(input), Format{Delimiter: "\t"}, 3)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []Record{{"", "A", "US"}, {"P1", "B", ""}, {"P2", "C", "FR"}}
	if tbl.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", tbl.Len(), len(want))
	}
	for i, rec := range want {
		if !slices.Equal(tbl.Records[i], rec) {
			t.Errorf("Records[%d] = %q, want %q", i, tbl.Records[i], rec)
		}
	}
}

func TestReadNoQuoting(t *testing.T) {
	// A quoted comma still splits: quoting is not supported.
	input := "g,n\ng1,\"a,b\"\n"
	tbl, err := Read(strings.NewReader(input), Format{}, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Records[0]) != 3 {
		t.Errorf("fields = %d, want 3", len(tbl.Records[0]))
	}
}

func TestScanStopsEarly(t *testing.T) {
	input := "h\n1\n2\n3\n"
	var got []string
	for line, err := range Scan(strings.NewReader(input), Format{}) {
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		got = append(got, line.Record[0])
		if len(got) == 2 {
			break
		}
	}
	if !slices.Equal(got, []string{"1", "2"}) {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contributors.csv")
	if err := os.WriteFile(path, []byte(contributors), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadFile(path, Format{}, 3)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("Len = %d, want 3", tbl.Len())
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), Format{}, 1)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
	if !errors.IsInputError(err) {
		t.Error("missing file should be an input error")
	}
}

func TestRequired(t *testing.T) {
	tests := []struct {
		indices []int
		want    int
	}{
		{[]int{0, 1}, 2},
		{[]int{3, 0}, 4},
		{[]int{-1, 2}, 3},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := Required(tt.indices...); got != tt.want {
			t.Errorf("Required(%v) = %d, want %d", tt.indices, got, tt.want)
		}
	}
}

func TestRecordField(t *testing.T) {
	r := Record{"P1", "A", "US"}
	if v, ok := r.Field(-1); !ok || v != "US" {
		t.Errorf("Field(-1) = %q, %v", v, ok)
	}
	if v, ok := r.Field(1); !ok || v != "A" {
		t.Errorf("Field(1) = %q, %v", v, ok)
	}
	if _, ok := r.Field(3); ok {
		t.Error("Field(3) should be out of range")
	}
	if _, ok := r.Field(-4); ok {
		t.Error("Field(-4) should be out of range")
	}
}
