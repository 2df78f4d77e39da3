package csvimport_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-import/internal/domain"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
)

// Las comas dentro de un campo entrecomillado no separan columnas.
func TestParse_CampoEntrecomilladoConComas(t *testing.T) {
	text := "name,category,quantity,branch_id\n" +
		"\"Dell XPS 15, 16GB RAM\",Electronics,100,1\n"

	res, err := csvimport.Parse(text)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "Dell XPS 15, 16GB RAM", rec.Get("name"))
	assert.Equal(t, "Electronics", rec.Get("category"))
	assert.Equal(t, "100", rec.Get("quantity"))
	assert.Equal(t, "1", rec.Get("branch_id"))
}

func TestParse_OmiteLineasVacias(t *testing.T) {
	text := "name,category,quantity,branch_id\r\n" +
		"\r\n" +
		"Mouse,Electronics,5,1\r\n" +
		"   \n" +
		",,,\n" +
		"Teclado,Electronics,7,2\n\n"

	res, err := csvimport.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "category", "quantity", "branch_id"}, res.Header)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 3, res.Records[0].Line)
	assert.Equal(t, "Mouse", res.Records[0].Get("name"))
	assert.Equal(t, 6, res.Records[1].Line)
	assert.Equal(t, "2", res.Records[1].Get("branch_id"))
}

func TestParse_EncabezadoNormalizado(t *testing.T) {
	res, err := csvimport.Parse(" Name , CATEGORY,Quantity,Branch_ID\nA,B,1,1")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "category", "quantity", "branch_id"}, res.Header)
}

func TestParse_ColumnasFaltantesYSobrantes(t *testing.T) {
	res, err := csvimport.Parse("name,category,quantity,branch_id\nA,B\nC,D,1,2,extra")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "", res.Records[0].Get("quantity"))
	assert.Equal(t, "", res.Records[0].Get("branch_id"))
	assert.Len(t, res.Records[1].Fields, 4)
}

func TestParse_FormatError(t *testing.T) {
	cases := map[string]string{
		"vacío":               "",
		"solo encabezado":     "name,category,quantity,branch_id\n",
		"solo espacios":       "\n  \n\r\n",
		"columna sin nombre":  "name,,quantity\nA,B,1",
		"columna duplicada":   "name,Name\nA,B",
		"filas todas vacías":  "name,category\n,\n , \n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := csvimport.Parse(text)
			assert.Nil(t, res)
			var fe *domain.FormatError
			require.True(t, errors.As(err, &fe), "se esperaba FormatError, se obtuvo %v", err)
			assert.ErrorIs(t, err, domain.ErrInvalidFormat)
		})
	}
}

func TestSplitLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want []string
	}{
		{"simple", "a,b,c", []string{"a", "b", "c"}},
		{"recorta sin comillas", " a , b ,c ", []string{"a", "b", "c"}},
		{"campos vacíos", "a,,c,", []string{"a", "", "c", ""}},
		{"comillas con coma", `"a,b",c`, []string{"a,b", "c"}},
		{"comilla escapada", `"dice ""hola""",x`, []string{`dice "hola"`, "x"}},
		{"comilla en medio es literal", `12" monitor,x`, []string{`12" monitor`, "x"}},
		{"espacios alrededor de comillas", ` "a, b" ,c`, []string{"a, b", "c"}},
		{"conserva espacios entre comillas", `" a ",b`, []string{" a ", "b"}},
		{"comilla sin cerrar", `"abc,def`, []string{"abc,def"}},
		{"utf8", "Café,Bebidas", []string{"Café", "Bebidas"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, csvimport.SplitLine(tc.line))
		})
	}
}

func TestDecodeInput(t *testing.T) {
	t.Run("quita BOM", func(t *testing.T) {
		raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,category")...)
		got, err := csvimport.DecodeInput(raw)
		require.NoError(t, err)
		assert.Equal(t, "name,category", got)
	})
	t.Run("latin1", func(t *testing.T) {
		raw := []byte{'C', 'a', 'f', 0xE9} // "Café" en ISO-8859-1
		got, err := csvimport.DecodeInput(raw)
		require.NoError(t, err)
		assert.Equal(t, "Café", got)
	})
	t.Run("utf8 sin cambios", func(t *testing.T) {
		got, err := csvimport.DecodeInput([]byte("Café"))
		require.NoError(t, err)
		assert.Equal(t, "Café", got)
	})
}
