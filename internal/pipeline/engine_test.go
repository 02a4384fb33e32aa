package pipeline

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dvfpipe/internal/config"
)

const runDVFHeader = "id_mutation,date_mutation,numero_disposition,nature_mutation,valeur_fonciere," +
	"code_commune,nom_commune,code_departement,id_parcelle,type_local," +
	"surface_reelle_bati,nombre_pieces_principales,surface_terrain,longitude,latitude\n"

func dvfRow(id, date string, valeur string, lon, lat string) string {
	return id + "," + date + ",1,Vente," + valeur + ",59350,Lille,59,p-" + id + ",Appartement,50,2,," + lon + "," + lat + "\n"
}

func indexFixture() string {
	quarters := "2021-T1;2021-T2;2021-T3;2021-T4;2022-T1;2022-T2"
	flat := "100;100;100;100;100;100"
	labels := []string{
		"Indice des prix des logements anciens - Paris - Appartements - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - Agglomération de Lyon - Appartements - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - Agglomération de Marseille - Appartements - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - Agglomération de Lille - Maisons - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - France métropolitaine - Appartements - Base 100 en moyenne annuelle 2015 - série CVS",
		"Indice des prix des logements anciens - France métropolitaine - Maisons - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - Zone A du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - Zone A bis du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - Zone B1 du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - Zone B2 du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS",
		"Indice des prix des logements anciens - Zone C du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS",
	}
	var b strings.Builder
	b.WriteString("Libellé;" + quarters + "\n")
	for _, label := range labels {
		b.WriteString(label + ";" + flat + "\n")
	}
	return b.String()
}

const irisValuesFixture = "IRIS;DISP_TP6019;DISP_Q119;DISP_MED19;DISP_Q319;DISP_EQ19;" +
	"DISP_D119;DISP_D219;DISP_D319;DISP_D419;DISP_D619;DISP_D719;DISP_D819;DISP_D919;" +
	"DISP_RD19;DISP_S80S2019;DISP_GI19;DISP_PACT19;DISP_PTSA19;DISP_PCHO19;DISP_PBEN19;" +
	"DISP_PPEN19;DISP_PPAT19;DISP_PPSOC19;DISP_PPFAM19;DISP_PPMINI19;DISP_PPLOGT19;DISP_PIMPOT19\n" +
	"595120101;12.5;15000;21000;28000;0.6;11000;13000;15000;17000;23000;25000;28000;34000;" +
	"3.1;4.2;0.31;0.75;0.62;0.04;0.09;0.26;0.1;0.05;0.02;0.01;0.02;-0.15\n"

const irisContoursFixture = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"DCOMIRIS":"595120101"},
   "geometry":{"type":"Polygon","coordinates":[[[3.0,50.5],[3.2,50.5],[3.2,50.7],[3.0,50.7],[3.0,50.5]]]}}
]}`

// TestRunEndToEnd drives the full pipeline over a small Lille fixture. The
// index is flat, so normalized prices equal raw prices and the expected
// values are exact.
func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	// Four training rows (2021-T1/T2) and two held-out rows (2021-T3).
	// The quantile filter drops the most expensive row of each partition.
	write("dvf_2021.csv", runDVFHeader+
		dvfRow("m1", "2021-01-15", "100000", "3.06", "50.63")+
		dvfRow("m2", "2021-02-15", "150000", "3.07", "50.64")+
		dvfRow("m3", "2021-04-15", "200000", "3.08", "50.62")+
		dvfRow("m4", "2021-05-15", "250000", "3.09", "50.61")+
		dvfRow("m5", "2021-08-15", "120000", "3.05", "50.65")+
		dvfRow("m6", "2021-09-15", "180000", "3.04", "50.66"))

	write("metropoles.csv", "Intercommunalité\nligne 2\nligne 3\nligne 4\nligne 5\n"+
		"CODGEO;LIBGEO;EPCI;LIBEPCI\n59350;Lille;245900410;Métropole Européenne de Lille\n")
	write("index.csv", indexFixture())
	write("geo.csv", "numero_uai;latitude;longitude\nL1;50.63;3.06\nB1;50.64;3.07\n")
	write("lycee.csv", "Annee;Etablissement;UAI;Code commune;Presents - L;Presents - ES;Presents - S;"+
		"Taux de mentions - L;Taux de mentions - ES;Taux de mentions - S\n"+
		"2020;Lycée Test;L1;59350;10;0;0;60;0;0\n")
	write("brevet.csv", "session;numero_d_etablissement;code_commune;nombre_total_d_admis;nombre_d_admis_mention_tb;taux_de_reussite\n"+
		"2021;B1;59350;100;25;90\n")
	write("iris_values.csv", irisValuesFixture)
	write("iris.geojson", irisContoursFixture)
	write("bpe.csv", "DCIRIS;TYPEQU\n595120101;A203\n595120101;A203\n595120101;F307\n")

	xlsx := excelize.NewFile()
	sheet := xlsx.GetSheetName(0)
	require.NoError(t, xlsx.SetSheetRow(sheet, "A1", &[]interface{}{"Code Commune", "Zone ABC"}))
	require.NoError(t, xlsx.SetSheetRow(sheet, "A2", &[]interface{}{"59009", "B2"}))
	require.NoError(t, xlsx.SaveAs(filepath.Join(dir, "zonage.xlsx")))
	require.NoError(t, xlsx.Close())

	write("config.yaml", `
paths:
  data_dir: `+dir+`
  dvf_patterns: ["dvf_*.csv"]
  index_table: index.csv
  zonage: zonage.xlsx
  metropoles: metropoles.csv
  school_geo: geo.csv
  brevet_table: brevet.csv
  lycee_table: lycee.csv
  iris_values: iris_values.csv
  iris_contours: iris.geojson
  amenities: bpe.csv
  output_file: out/processed.csv
pipeline:
  top_metropoles: 1
  workers: 2
`)

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	result, err := Run(context.Background(), cfg, logger)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TrainRows)
	assert.Equal(t, 1, result.TestRows)
	assert.Equal(t, 4, result.Rows)
	assert.NotEmpty(t, result.RunID)

	f, err := os.Open(result.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5, "header plus four rows")

	header := rows[0]
	require.Equal(t, OutputHeader(), header)
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("no column %q", name)
		return -1
	}

	byID := map[string][]string{}
	for _, row := range rows[1:] {
		byID[row[col("id_mutation")]] = row
	}
	require.Contains(t, byID, "m1")
	require.Contains(t, byID, "m2")
	require.Contains(t, byID, "m3")
	require.Contains(t, byID, "m5")
	assert.NotContains(t, byID, "m4", "training quantile cut")
	assert.NotContains(t, byID, "m6", "held-out quantile cut")

	m1 := byID["m1"]
	assert.Equal(t, "Métropole Européenne de Lille", m1[col("libepci")])
	assert.Equal(t, "2021-T1", m1[col("trimestre_vente")])
	assert.Equal(t, "1", m1[col("coeff_actu")], "flat index keeps prices unchanged")
	assert.Equal(t, "2000", m1[col("prix_m2")])
	assert.Equal(t, "2000", m1[col("prix_m2_actualise")])
	assert.Equal(t, "3500", m1[col("prix_m2_zone")], "mean over the other training sales")
	assert.Equal(t, "60", m1[col("moyenne")])
	assert.Equal(t, "0.25", m1[col("moyenne_brevet")])
	assert.Equal(t, "595120101", m1[col("code_iris")])
	assert.Equal(t, "21000", m1[col("Mediane")])
	assert.Equal(t, "2", m1[col("Banques")])
	assert.Equal(t, "1", m1[col("Bibliotheques")])
	assert.Equal(t, "0", m1[col("Cinema")])

	m5 := byID["m5"]
	assert.Equal(t, "2021-T3", m5[col("trimestre_vente")])
	assert.Equal(t, "3000", m5[col("prix_m2_zone")], "held-out row averages the full training set")
}
