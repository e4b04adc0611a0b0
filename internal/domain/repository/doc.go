// Package repository define las interfaces de acceso a datos del núcleo:
// registros de contenido polimórficos, tokens de seguridad de un solo uso y
// roles de tenant/organización.
//
// Las implementaciones viven en internal/store/{pg,memory}. Las interfaces
// retornan errores sentinela de este paquete (ErrNotFound, ErrConflict, etc.)
// para que los servicios puedan mapearlos sin conocer el driver.
package repository
