// Package i18n holds the user-visible strings of the bridge.
//
// Keys are the English texts; Spanish translations reproduce the wording the
// point of sale shows to its operators.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Printer formats a user-visible string in one locale
type Printer interface {
	Sprintf(key message.Reference, a ...interface{}) string
}

var spanish = map[string]string{
	"Unnamed product":                                     "Producto sin nombre",
	"Unspecified product":                                 "Producto sin especificar",
	"Reprint - products could not be retrieved":           "Reimpresión - No se pudieron obtener los productos",
	" (Reprint)":                                          " (Reimpresión)",
	" (Added)":                                            " (Agregado)",
	"Extra":                                               "Extra",
	"Table %v":                                            "Mesa %v",
	"User %v":                                             "Usuario %v",
	"Product %d":                                          "Producto %d",
	"Error processing receipt":                            "Error al procesar recibo",
	"No order lines found in receipt markup":              "No se encontraron líneas en el recibo",
	"Print error":                                         "Error de impresión",
	"Could not create the task in the project":            "No se pudo crear la tarea en el proyecto",
	"Error processing the receipt: %v":                    "Error al procesar el recibo: %v",
	"Error creating reprint task: %v":                     "Error al crear la tarea de reimpresión: %v",
	"Error creating reprint task":                         "Error al crear la tarea de reimpresión",
	"Full reprint sent to project":                        "Reimpresión completa enviada al proyecto",
	"Cannot print: the printer has no project configured": "No se puede imprimir: la impresora no tiene un proyecto configurado",
	"The project printer has no project configured":       "La impresora de tipo proyecto no tiene un proyecto configurado. Por favor, configure un proyecto en la impresora.",
	"Unrecognized project_id format":                      "Formato de project_id no reconocido",
	"Project integration is not enabled":                  "La integración con proyectos no está habilitada",
	"No order selected":                                   "No hay orden seleccionada",
	"No products in the order":                            "No hay productos en la orden",
	"Order could not be saved":                            "No se pudo guardar la orden",
	"Task created successfully":                           "Tarea creada correctamente",
	"Error creating task":                                 "Error al crear la tarea",
	"Customer":                                            "Cliente",
	"Table":                                               "Mesa",
	"Waiter":                                              "Camarero",
	"Served by":                                           "Atendido por",
	"General note":                                        "Nota General",
	"Products":                                            "Productos",
	"Product":                                             "Producto",
	"Quantity":                                            "Cantidad",
	"Price":                                               "Precio",
	"Notes":                                               "Notas",
	"No notes":                                            "Sin notas",
	"No name":                                             "Sin nombre",
	"Order":                                               "Pedido",
	"Total":                                               "Total",
	"Order created: %s":                                   "Orden creada: %s",
	"Created on %s at %s":                                 "Creado el %s a las %s",
	"Type: Order change":                                  "Tipo: Cambio en el pedido",
	"Type: Added order":                                   "Tipo: Pedido agregado",
	"Type: New order":                                     "Tipo: Nuevo pedido",
	"No order data provided":                              "No se proporcionaron datos de orden",
	"No project id provided":                              "No se proporcionó ID de proyecto",
	"Project not found":                                   "Proyecto no encontrado",
	"No order id provided":                                "No se proporcionó ID de orden",
	"Order not found":                                     "Orden no encontrada",
	"No project configured":                               "No hay proyecto configurado",
	"Preparation task created successfully":               "Se creó la tarea de preparación correctamente",
}

var builder = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range spanish {
		_ = b.SetString(language.Spanish, key, text)
	}
	return b
}()

// NewPrinter returns a printer for locale ("en", "es", "es-CO", ...).
// Unknown locales fall back to English.
func NewPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag, message.Catalog(builder))
}

// English is the default printer used when no locale is configured
func English() *message.Printer {
	return NewPrinter("en")
}
