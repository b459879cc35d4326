package municipality

// Códigos IBGE, coordenadas WGS84 e estimativas populacionais de 2022.
var builtin = []Record{
	{Key: "fortaleza", Name: "Fortaleza", Code: "2304400", State: "CE", Category: Capital, Latitude: -3.7319, Longitude: -38.5267, Population: 2686612},
	{Key: "recife", Name: "Recife", Code: "2611606", State: "PE", Category: Capital, Latitude: -8.0476, Longitude: -34.8770, Population: 1653461},
	{Key: "salvador", Name: "Salvador", Code: "2927408", State: "BA", Category: Capital, Latitude: -12.9714, Longitude: -38.5014, Population: 2886698},
	{Key: "sao_luis", Name: "São Luís", Code: "2111300", State: "MA", Category: Capital, Latitude: -2.5387, Longitude: -44.2825, Population: 1108975},
	{Key: "teresina", Name: "Teresina", Code: "2211001", State: "PI", Category: Capital, Latitude: -5.0892, Longitude: -42.8019, Population: 868075},
	{Key: "natal", Name: "Natal", Code: "2408102", State: "RN", Category: Capital, Latitude: -5.7945, Longitude: -35.2110, Population: 890480},
	{Key: "joao_pessoa", Name: "João Pessoa", Code: "2507507", State: "PB", Category: Capital, Latitude: -7.1195, Longitude: -34.8450, Population: 817511},
	{Key: "maceio", Name: "Maceió", Code: "2704302", State: "AL", Category: Capital, Latitude: -9.6658, Longitude: -35.7350, Population: 1025360},
	{Key: "aracaju", Name: "Aracaju", Code: "2800308", State: "SE", Category: Capital, Latitude: -10.9472, Longitude: -37.0731, Population: 664908},

	{Key: "caucaia", Name: "Caucaia", Code: "2301000", State: "CE", Category: Interior, Latitude: -3.7358, Longitude: -38.6531, Population: 364637},
	{Key: "olinda", Name: "Olinda", Code: "2609600", State: "PE", Category: Interior, Latitude: -8.0089, Longitude: -34.8553, Population: 393115},
	{Key: "feira_de_santana", Name: "Feira de Santana", Code: "2918001", State: "BA", Category: Interior, Latitude: -12.2662, Longitude: -38.9663, Population: 619609},
	{Key: "imperatriz", Name: "Imperatriz", Code: "2105302", State: "MA", Category: Interior, Latitude: -5.5264, Longitude: -47.4919, Population: 259337},
	{Key: "parnaiba", Name: "Parnaíba", Code: "2207702", State: "PI", Category: Interior, Latitude: -2.9058, Longitude: -41.7766, Population: 153078},
	{Key: "mossoro", Name: "Mossoró", Code: "2403251", State: "RN", Category: Interior, Latitude: -5.1880, Longitude: -37.3441, Population: 297378},
	{Key: "campina_grande", Name: "Campina Grande", Code: "2504009", State: "PB", Category: Interior, Latitude: -7.2306, Longitude: -35.8811, Population: 413830},
	{Key: "arapiraca", Name: "Arapiraca", Code: "2700102", State: "AL", Category: Interior, Latitude: -9.7525, Longitude: -36.6608, Population: 234185},
	{Key: "nossa_senhora_do_socorro", Name: "Nossa Senhora do Socorro", Code: "2801009", State: "SE", Category: Interior, Latitude: -10.8551, Longitude: -37.1264, Population: 179000},
}
