package parser

import (
	"sort"

	"costa-assist/internal/model"
	"costa-assist/internal/utils"
)

type place struct {
	id      int
	name    string
	aliases []string
}

// Region IDs used by the property API
var gazetteer = []place{
	{1, "Ronda", nil},
	{2, "Serranía de Ronda", []string{"serrania", "ronda mountains"}},
	{3, "Arriate", nil},
	{4, "Montecorto", nil},
	{5, "Benaoján", nil},
	{6, "Jimera de Líbar", []string{"jimera"}},
	{7, "Cortes de la Frontera", []string{"cortes"}},
	{8, "Gaucín", nil},
	{9, "Grazalema", nil},
	{10, "Zahara de la Sierra", []string{"zahara"}},
	{11, "Setenil de las Bodegas", []string{"setenil"}},
	{12, "Olvera", nil},
	{13, "El Burgo", nil},
	{14, "Yunquera", nil},
	{15, "Ardales", nil},
	{16, "Teba", nil},
	{17, "Campillos", nil},
	{18, "Antequera", nil},
	{19, "Archidona", nil},
	{20, "Álora", nil},
	{21, "Coín", nil},
	{22, "Cártama", nil},
	{23, "Alhaurín el Grande", nil},
	{24, "Alhaurín de la Torre", nil},
	{30, "Costa del Sol", nil},
	{31, "Marbella", []string{"puerto banus", "nueva andalucia", "san pedro de alcantara"}},
	{32, "Estepona", nil},
	{33, "Benahavís", nil},
	{34, "Casares", nil},
	{35, "Manilva", nil},
	{36, "Sotogrande", nil},
	{37, "San Roque", nil},
	{38, "Mijas", []string{"mijas costa", "la cala de mijas"}},
	{39, "Fuengirola", nil},
	{40, "Benalmádena", nil},
	{41, "Torremolinos", nil},
	{42, "Málaga", []string{"malaga city"}},
	{50, "Axarquía", nil},
	{51, "Nerja", nil},
	{52, "Frigiliana", nil},
	{53, "Cómpeta", nil},
	{54, "Torrox", nil},
	{55, "Vélez-Málaga", []string{"velez"}},
	{60, "Sevilla", []string{"seville"}},
	{61, "Granada", nil},
	{62, "Córdoba", []string{"cordova"}},
	{63, "Cádiz", []string{"cadiz city"}},
	{64, "Jerez de la Frontera", []string{"jerez"}},
	{65, "Tarifa", nil},
	{66, "Vejer de la Frontera", []string{"vejer"}},
}

type gazetteerKey struct {
	phrase string
	region model.Region
}

// Normalized names and aliases, longest first so "Serranía de Ronda" wins over "Ronda"
var gazetteerIndex = buildGazetteerIndex()

func buildGazetteerIndex() []gazetteerKey {
	var keys []gazetteerKey
	for _, p := range gazetteer {
		region := model.Region{ID: p.id, Name: p.name}
		keys = append(keys, gazetteerKey{utils.NormalizePlaceName(p.name), region})
		for _, alias := range p.aliases {
			keys = append(keys, gazetteerKey{utils.NormalizePlaceName(alias), region})
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return len(keys[i].phrase) > len(keys[j].phrase)
	})
	return keys
}

// ResolveRegion looks the text up against the known place names, ignoring
// case and accents. Unlike ExtractLocation it needs no preposition, but it only
// knows the places listed in the gazetteer.
func ResolveRegion(text string) (model.Region, bool) {
	normalized := utils.NormalizePlaceName(text)
	if normalized == "" {
		return model.Region{}, false
	}
	for _, key := range gazetteerIndex {
		if utils.ContainsPhrase(normalized, key.phrase) {
			return key.region, true
		}
	}
	return model.Region{}, false
}
