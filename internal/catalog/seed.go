package catalog

import (
	"github.com/fjod/forgeline/internal/domain"
	"github.com/shopspring/decimal"
)

type seedRow struct {
	id          int64
	name        string
	category    string
	price       int64
	image       string
	description string
	stock       int
}

// Listed in "popular" order, which is the default sort.
var seedRows = []seedRow{
	{1, "Martillo Profesional", "Herramientas Manuales", 1500, "assets/images/martillo.jpeg", "Martillo de alta calidad para trabajos profesionales", 50},
	{3, "Destornillador Set", "Herramientas Manuales", 800, "assets/images/destornillador.png", "Set completo de destornilladores profesionales", 100},
	{7, "Llave Ajustable Cromada", "Herramientas Manuales", 950, "assets/images/llave.png", "Llave ajustable de acero cromado, alta resistencia", 80},
	{2, "Taladro Inalámbrico 20V", "Herramientas Eléctricas", 8500, "assets/images/Taladro Inalambrico.jpeg", "Taladro inalámbrico de 20V con batería de litio incluida", 25},
	{8, "Sierra Circular 7 1/4\"", "Herramientas Eléctricas", 6200, "assets/images/Sierra Circular.jpg", "Sierra circular potente para cortes precisos en madera", 15},
	{9, "Lijadora Orbital", "Herramientas Eléctricas", 4800, "assets/images/lijadora.jpeg", "Lijadora para acabados finos en madera y metal", 35},
	{5, "Tubería PVC 2m", "Plomería", 1200, "assets/images/Tubería PVC 2m.jpeg", "Tubería PVC de 2 metros para plomería", 75},
	{10, "Llave de Agua Cromada", "Plomería", 250, "assets/images/Llave de Agua.jpeg", "Llave de agua para lavamanos con acabado cromado", 300},
	{11, "Set de Herramientas de Plomería", "Plomería", 2450, "assets/images/Set de Herramientas Plomería.jpg", "Kit completo para reparaciones de plomería", 90},
	{4, "Cable Eléctrico #12 (Rollo 100m)", "Electricidad", 2500, "assets/images/cable.jpg", "Cable eléctrico de alta conductividad para instalaciones seguras", 200},
	{12, "Multímetro Digital", "Electricidad", 1180, "assets/images/Multimetro Digital.jpeg", "Multímetro para mediciones de voltaje, corriente y resistencia", 250},
	{13, "Interruptor Sencillo", "Electricidad", 150, "assets/images/interruptor.jpg", "Interruptor de luz sencillo para empotrar", 300},
	{14, "Casco de Seguridad", "Construcción", 500, "assets/images/Casco de Seguridad.jpg", "Casco de seguridad industrial para protección", 20},
	{15, "Botas de Seguridad", "Construcción", 1750, "assets/images/Botas de Seguridad.png", "Botas de seguridad con punta de acero", 60},
	{16, "Cemento (Bolsa 42.5kg)", "Construcción", 250, "assets/images/Cemento.png", "Cemento de uso general para construcción", 120},
	{6, "Pintura Interior (Galón)", "Pinturas", 1800, "assets/images/pintura.jpg", "Pintura interior de alta calidad, acabado mate lavable", 30},
	{17, "Set de Brochas (5 Piezas)", "Pinturas", 420, "assets/images/Brocha Set 5pcs.jpeg", "Set de brochas de cerdas sintéticas para un acabado uniforme", 150},
	{18, "Rodillo Profesional 9\"", "Pinturas", 350, "assets/images/Rodillo Profesional.jpeg", "Rodillo de felpa para una aplicación rápida y sin goteo", 100},
	{19, "Tijeras de Podar", "Jardinería", 380, "assets/images/Tijeras de podar.jpg", "Tijeras de podar de alta resistencia para jardín", 80},
	{20, "Manguera de Riego 15m", "Jardinería", 650, "assets/images/manguera.jpg", "Manguera flexible y resistente con pistola de riego", 40},
	{21, "Set de Jardinería (3 piezas)", "Jardinería", 450, "assets/images/set-jardin.jpg", "Kit básico de jardinería con pala, rastrillo y trasplantador", 110},
}

// Seed returns a fresh copy of the built-in product list.
func Seed() []domain.Product {
	out := make([]domain.Product, 0, len(seedRows))
	for _, r := range seedRows {
		out = append(out, domain.Product{
			ID:          r.id,
			Name:        r.name,
			Category:    r.category,
			Price:       decimal.NewFromInt(r.price),
			ImageRef:    r.image,
			Description: r.description,
			Stock:       r.stock,
		})
	}
	return out
}
