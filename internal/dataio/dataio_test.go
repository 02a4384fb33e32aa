package dataio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dvfpipe/internal/domain"
	"dvfpipe/internal/pricing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const dvfHeader = "id_mutation,date_mutation,numero_disposition,nature_mutation,valeur_fonciere," +
	"code_commune,nom_commune,code_departement,id_parcelle,type_local," +
	"surface_reelle_bati,nombre_pieces_principales,surface_terrain,longitude,latitude\n"

func TestExpandPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dvf_2020.csv", "x")
	writeFile(t, dir, "dvf_2021.csv", "x")

	paths, err := ExpandPatterns([]string{filepath.Join(dir, "dvf_*.csv")})
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	_, err = ExpandPatterns([]string{filepath.Join(dir, "missing_*.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file matches")
}

func TestExpandPatternsEmptyListIsFatal(t *testing.T) {
	_, err := ExpandPatterns(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input patterns")

	_, err = ExpandPatterns([]string{})
	require.Error(t, err)
}

func TestReadTransactions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dvf.csv", dvfHeader+
		"m1,2021-07-15,1,Vente,250000,59350,Lille,59,p1,Appartement,55,2,,3.06,50.63\n"+
		"m2,2020-02-01,1,Vente,400000,59350,Lille,59,p2,Maison,120,5,300,3.05,50.62\n")

	txs, err := ReadTransactions([]string{path}, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "m1", txs[0].MutationID)
	assert.Equal(t, domain.Apartment, txs[0].TypeLocal)
	assert.Equal(t, "2021-07-15", txs[0].Date.Format("2006-01-02"))
	assert.Equal(t, 250000.0, txs[0].ValeurFonciere)
	assert.True(t, math.IsNaN(txs[0].SurfaceTerrain), "empty cell reads as NaN")
	assert.Equal(t, 300.0, txs[1].SurfaceTerrain)
	assert.True(t, txs[0].HasLocation())
}

func TestReadTransactionsRowCap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dvf.csv", dvfHeader+
		"m1,2021-07-15,1,Vente,250000,59350,Lille,59,p1,Appartement,55,2,,3.06,50.63\n"+
		"m2,2020-02-01,1,Vente,400000,59350,Lille,59,p2,Maison,120,5,300,3.05,50.62\n"+
		"m3,2020-03-01,1,Vente,410000,59350,Lille,59,p3,Maison,130,5,310,3.04,50.61\n")

	txs, err := ReadTransactions([]string{path}, 2)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestReadTransactionsMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dvf.csv", "id_mutation,date_mutation\nm1,2021-07-15\n")

	_, err := ReadTransactions([]string{path}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestReadMetropolesSkipsPreamble(t *testing.T) {
	dir := t.TempDir()
	content := "Intercommunalité - Métropole\nMise en ligne 2022\nsource INSEE\nchamp France\nnote préambule\n" +
		"CODGEO;LIBGEO;EPCI;LIBEPCI\n" +
		"59350;Lille;245900410;Métropole Européenne de Lille\n" +
		"69123;Lyon;200046977;Métropole de Lyon\n"
	path := writeFile(t, dir, "metropoles.csv", content)

	m, err := ReadMetropoles(path)
	require.NoError(t, err)
	assert.Equal(t, "Métropole Européenne de Lille", m["Lille"])
	assert.Equal(t, "Métropole de Lyon", m["Lyon"])
}

func TestReadIndexTable(t *testing.T) {
	dir := t.TempDir()
	content := "Libellé;2021-T1;2021-T2\n" +
		"Some series;100;101\n" +
		"Other series;(s);102\n"
	path := writeFile(t, dir, "index.csv", content)

	raw, err := ReadIndexTable(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2021-T1", "2021-T2"}, raw.Quarters)
	require.Contains(t, raw.Series, "Some series")

	// Values stay aligned with the Quarters slice whatever its order.
	byQuarter := map[string]string{}
	for i, q := range raw.Quarters {
		byQuarter[q] = raw.Series["Other series"][i]
	}
	assert.Equal(t, "(s)", byQuarter["2021-T1"])
	assert.Equal(t, "102", byQuarter["2021-T2"])
}

func TestReadIRISValues(t *testing.T) {
	dir := t.TempDir()
	header := "IRIS;DISP_TP6019;DISP_Q119;DISP_MED19;DISP_Q319;DISP_EQ19;" +
		"DISP_D119;DISP_D219;DISP_D319;DISP_D419;DISP_D619;DISP_D719;DISP_D819;DISP_D919;" +
		"DISP_RD19;DISP_S80S2019;DISP_GI19;DISP_PACT19;DISP_PTSA19;DISP_PCHO19;DISP_PBEN19;" +
		"DISP_PPEN19;DISP_PPAT19;DISP_PPSOC19;DISP_PPFAM19;DISP_PPMINI19;DISP_PPLOGT19;DISP_PIMPOT19\n"
	row := "123456;12.5;15000;21000;28000;0.6;11000;13000;15000;17000;23000;25000;28000;34000;" +
		"3.1;4.2;0.31;0.75;0.62;0.04;0.09;0.26;0.1;0.05;0.02;0.01;0.02;-0.15\n"
	path := writeFile(t, dir, "iris.csv", header+row+row)

	values, err := ReadIRISValues(path)
	require.NoError(t, err)
	require.Len(t, values, 1, "duplicate codes keep the first row")

	profile, ok := values["000123456"]
	require.True(t, ok, "code read as integer is zero-padded to 9 characters")
	assert.Equal(t, 12.5, profile.PovertyRate60)
	assert.Equal(t, 21000.0, profile.Median)
	assert.Equal(t, 21000.0, profile.D5, "the median doubles as the fifth decile")
	assert.Equal(t, 0.31, profile.Gini)
	assert.Equal(t, -0.15, profile.ShareTaxes)
}

func TestReadAmenities(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bpe.csv", "DCIRIS;TYPEQU\n123456789;A203\n123456789;C101\n")

	rows, err := ReadAmenities(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "123456789", rows[0].IRIS)
	assert.Equal(t, "A203", rows[0].TypeEq)
}

func TestReadSchoolGeo(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "geo.csv", "numero_uai;latitude;longitude\n0590001A;50.63;3.06\n0590002B;;\n")

	geos, err := ReadSchoolGeo(path)
	require.NoError(t, err)
	require.Len(t, geos, 1, "entries without coordinates are dropped")
	assert.Equal(t, 50.63, geos["0590001A"].Latitude)
}

func TestReadLyceeResults(t *testing.T) {
	dir := t.TempDir()
	content := "Annee;Etablissement;UAI;Code commune;Presents - L;Presents - ES;Presents - S;" +
		"Taux de mentions - L;Taux de mentions - ES;Taux de mentions - S\n" +
		"2020;Lycée Faidherbe;0590119J;59350;30;60;90;55;60;65\n"
	path := writeFile(t, dir, "lyc.csv", content)

	rows, err := ReadLyceeResults(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2020, rows[0].Year)
	assert.Equal(t, "0590119J", rows[0].UAI)
	assert.Equal(t, 90.0, rows[0].PresentsS)
}

func TestReadBrevetResults(t *testing.T) {
	dir := t.TempDir()
	content := "session;numero_d_etablissement;code_commune;nombre_total_d_admis;nombre_d_admis_mention_tb;taux_de_reussite\n" +
		"2021;0590120K;59350;120;30;91\n"
	path := writeFile(t, dir, "brevet.csv", content)

	rows, err := ReadBrevetResults(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2021, rows[0].Session)
	assert.Equal(t, 30.0, rows[0].AdmisMentionTB)
}

func TestReadZonage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zonage.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Code Commune", "Nom Commune", "Zone ABC"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"59009", "Aniche", "B2"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"6088", "Nice", "A bis"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	zonage, err := ReadZonage(path)
	require.NoError(t, err)
	assert.Equal(t, pricing.ZoneB2, zonage["59009"])
	assert.Equal(t, pricing.ZoneABis, zonage["06088"], "codes lose their zero padding in the workbook")
}

func TestReadIRISContours(t *testing.T) {
	dir := t.TempDir()
	content := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"DCOMIRIS":"123456789"},
	   "geometry":{"type":"Polygon","coordinates":[[[3.0,50.6],[3.1,50.6],[3.1,50.7],[3.0,50.7],[3.0,50.6]]]}},
	  {"type":"Feature","properties":{"DCOMIRIS":"123456789"},
	   "geometry":{"type":"Polygon","coordinates":[[[4.0,45.7],[4.1,45.7],[4.1,45.8],[4.0,45.8],[4.0,45.7]]]}},
	  {"type":"Feature","properties":{"DCOMIRIS":"987654321"},
	   "geometry":{"type":"Point","coordinates":[3.0,50.6]}}
	]}`
	path := writeFile(t, dir, "iris.geojson", content)

	shapes, err := ReadIRISContours(path)
	require.NoError(t, err)
	require.Len(t, shapes, 1, "duplicates keep the first feature, point features are skipped")
	assert.Equal(t, "123456789", shapes[0].Code)
	assert.True(t, shapes[0].Bound.Contains(orb.Point{3.05, 50.65}))
	assert.False(t, shapes[0].Bound.Contains(orb.Point{4.05, 45.75}))
}
