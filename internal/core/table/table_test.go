package table

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"customerlens/internal/core/normalize"
	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func load(t *testing.T) *Table {
	t.Helper()
	tb, err := FromCSV(strings.NewReader(testkit.CustomersCSV), Columns{})
	require.NoError(t, err)
	return tb
}

func TestFromCSV_KeepsLiteralTokens(t *testing.T) {
	tb := load(t)
	assert.Equal(t, []string{"age", "salutation", "name", "city"}, tb.Names())
	assert.Equal(t, 6, tb.Len())

	ages, err := tb.Column("age")
	require.NoError(t, err)
	assert.Equal(t, []string{"45", "age-33", "unknown", "-3", "thirty", ""}, ages)
	assert.False(t, tb.Normalized())
}

func TestFromCSV_Malformed(t *testing.T) {
	_, err := FromCSV(strings.NewReader("age,salutation\n1,Mr.,extra\n"), Columns{})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeCSV))
}

func TestNormalize(t *testing.T) {
	out, err := load(t).Normalize(context.Background(), NormalizeOptions{Workers: 2, Partition: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "salutation", "name", "city", "gender"}, out.Names())
	ages, _ := out.Column("age")
	assert.Equal(t, []string{"45", "33", "unknown", "-3", "unknown", "unknown"}, ages)
	genders, _ := out.Column("gender")
	assert.Equal(t, []string{"male", "female", "unknown", "female", "male", "unknown"}, genders)

	sals, _ := out.Column("salutation")
	assert.Equal(t, "Dr.", sals[2], "salutation kept verbatim")
	assert.True(t, out.Normalized())
}

func TestNormalize_OrderAcrossPartitionSizes(t *testing.T) {
	var b strings.Builder
	b.WriteString("age,salutation\n")
	want := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		if i%3 == 0 {
			b.WriteString("age-" + strconv.Itoa(i) + ",Mr.\n")
		} else {
			b.WriteString(strconv.Itoa(i) + ",Miss.\n")
		}
		want = append(want, strconv.Itoa(i))
	}
	tb, err := FromCSV(strings.NewReader(b.String()), Columns{})
	require.NoError(t, err)

	for _, part := range []int{1, 7, 64, 1000} {
		out, err := tb.Normalize(context.Background(), NormalizeOptions{Workers: 4, Partition: part})
		require.NoError(t, err)
		got, _ := out.Column("age")
		assert.Equal(t, want, got, "partition %d", part)
	}
}

func TestNormalize_MissingColumn(t *testing.T) {
	tb, err := FromCSV(strings.NewReader("years,title\n1,Mr.\n"), Columns{})
	require.NoError(t, err)
	_, err = tb.Normalize(context.Background(), NormalizeOptions{})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
	e, ok := perr.As(err)
	require.True(t, ok)
	assert.Equal(t, "age", e.Field())
}

func TestNormalize_CustomColumns(t *testing.T) {
	tb, err := FromCSV(strings.NewReader("years,title\nage-9,Master.\n"), Columns{Age: "years", Salutation: "title", Gender: "sex"})
	require.NoError(t, err)
	out, err := tb.Normalize(context.Background(), NormalizeOptions{})
	require.NoError(t, err)
	sex, err := out.Column("sex")
	require.NoError(t, err)
	assert.Equal(t, []string{"male"}, sex)
	years, _ := out.Column("years")
	assert.Equal(t, []string{"9"}, years)
}

func TestNormalize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := load(t).Normalize(ctx, NormalizeOptions{})
	require.Error(t, err)
}

func TestNormalize_SanitizesPassthrough(t *testing.T) {
	tb, err := FromRecords([]string{"age", "salutation", "city"}, [][]string{{"1", "Mr.", "Lyon\x07"}}, Columns{})
	require.NoError(t, err)
	out, err := tb.Normalize(context.Background(), NormalizeOptions{})
	require.NoError(t, err)
	city, _ := out.Column("city")
	assert.Equal(t, []string{"Lyon"}, city)
}

func TestCustomersRoundTrip(t *testing.T) {
	out, err := load(t).Normalize(context.Background(), NormalizeOptions{})
	require.NoError(t, err)

	cs, err := out.Customers()
	require.NoError(t, err)
	require.Len(t, cs, 6)
	assert.Equal(t, normalize.KnownAge(45), cs[0].Age)
	assert.Equal(t, normalize.GenderMale, cs[0].Gender)
	city, ok := cs[0].Attr("city")
	assert.True(t, ok)
	assert.Equal(t, "London", city)

	back, err := FromCustomers(out.Names(), cs, out.Columns())
	require.NoError(t, err)
	want, _ := out.Rows()
	got, _ := back.Rows()
	assert.Equal(t, want, got)
	assert.Equal(t, out.Names(), back.Names())
}

func TestCustomers_RequiresNormalized(t *testing.T) {
	_, err := load(t).Customers()
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
	_, err = load(t).Summarize()
	assert.Error(t, err)
}

func TestFromCustomers_AppendsGender(t *testing.T) {
	cs := []normalize.Customer{normalize.NormalizeRecord(normalize.RawRecord{Age: "20", Salutation: "Mrs."})}
	tb, err := FromCustomers([]string{"age", "salutation"}, cs, Columns{})
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "salutation", "gender"}, tb.Names())
}

func TestFilterAndRows(t *testing.T) {
	tb := load(t)
	london, err := tb.Filter("city", func(c string) bool { return c == "London" })
	require.NoError(t, err)
	assert.Equal(t, 3, london.Len())

	rows, err := london.Rows("name")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Ann Smith"}, {"Cy Ray"}, {"Fa Wu"}}, rows)

	none, err := tb.Filter("city", func(string) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, 0, none.Len())

	_, err = tb.Filter("nope", func(string) bool { return true })
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
	_, err = tb.Rows("nope")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	out, err := load(t).Normalize(context.Background(), NormalizeOptions{})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, out.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "age,salutation,name,city,gender", lines[0])
	assert.Equal(t, "33,Mrs.,Bo Li,Paris,female", lines[2])
}

func TestSummarize(t *testing.T) {
	out, err := load(t).Normalize(context.Background(), NormalizeOptions{})
	require.NoError(t, err)
	s, err := out.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 6, s.Rows)
	assert.Equal(t, 3, s.KnownAges)
	assert.Equal(t, map[normalize.Gender]int{
		normalize.GenderMale:    2,
		normalize.GenderFemale:  2,
		normalize.GenderUnknown: 2,
	}, s.Genders)
}

func TestFromRecords_Ragged(t *testing.T) {
	_, err := FromRecords([]string{"a", "b"}, [][]string{{"1"}}, Columns{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeCSV))
	_, err = FromRecords(nil, nil, Columns{})
	assert.Error(t, err)
}
