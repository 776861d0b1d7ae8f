// Package assistant is the manager chatbot. A chat message is resolved by the
// completion service into at most one catalog action, which runs against the
// domain services; when no action fits, the message becomes a structured
// read-only query over an allow-listed schema.
package assistant

import "slices"

// ActionKind names one catalog action. The set is closed: every kind has a
// catalog entry, a case in Servicios.Ejecutar and a case in Formatear.
type ActionKind string

const (
	KpisDia                  ActionKind = "kpis_dia"
	KpisSemana               ActionKind = "kpis_semana"
	KpisMes                  ActionKind = "kpis_mes"
	PrediccionVentas         ActionKind = "prediccion_ventas"
	TopProductosUltimoMes    ActionKind = "top_productos_ultimo_mes"
	TopClientesUltimoMes     ActionKind = "top_clientes_ultimo_mes"
	ProductosBajoStock       ActionKind = "productos_bajo_stock"
	ResumenCaja              ActionKind = "resumen_caja"
	RegistrarVenta           ActionKind = "registrar_venta"
	RegistrarCompra          ActionKind = "registrar_compra"
	RegistrarGasto           ActionKind = "registrar_gasto"
	RegistrarRetiroCaja      ActionKind = "registrar_retiro_caja"
	RegistrarFondoCaja       ActionKind = "registrar_fondo_caja"
	RealizarCorteCaja        ActionKind = "realizar_corte_caja"
	CrearCliente             ActionKind = "crear_cliente"
	ActivarCliente           ActionKind = "activar_cliente"
	DesactivarCliente        ActionKind = "desactivar_cliente"
	CrearProveedor           ActionKind = "crear_proveedor"
	ActivarProveedor         ActionKind = "activar_proveedor"
	DesactivarProveedor      ActionKind = "desactivar_proveedor"
	CrearProducto            ActionKind = "crear_producto"
	ActualizarPrecioProducto ActionKind = "actualizar_precio_producto"
	ActivarProducto          ActionKind = "activar_producto"
	DesactivarProducto       ActionKind = "desactivar_producto"
	ActivarEmpleado          ActionKind = "activar_empleado"
	DesactivarEmpleado       ActionKind = "desactivar_empleado"
	CrearTicketSoporte       ActionKind = "crear_ticket_soporte"
	CerrarTicketSoporte      ActionKind = "cerrar_ticket_soporte"
)

// Parameter types, a subset of JSON schema.
const (
	TipoTexto  = "string"
	TipoNumero = "number"
	TipoEntero = "integer"
)

// Param describes one argument of an action.
type Param struct {
	Nombre      string   `json:"nombre"`
	Tipo        string   `json:"tipo"`
	Descripcion string   `json:"descripcion"`
	Requerido   bool     `json:"requerido"`
	Enum        []string `json:"enum,omitempty"`
}

// Accion is one catalog entry as offered to the completion service.
type Accion struct {
	Kind        ActionKind `json:"accion"`
	Descripcion string     `json:"descripcion"`
	// Escritura marks actions that change data.
	Escritura bool    `json:"escritura"`
	Params    []Param `json:"params"`
}

// ActionCall is the action picked by the completion service with its raw
// arguments, as decoded from the tool call.
type ActionCall struct {
	Kind ActionKind
	Args map[string]any
}

var metodosPago = []string{"efectivo", "tarjeta", "transferencia", "cheque", "vale", "credito"}

var (
	pFecha  = Param{Nombre: "fecha", Tipo: TipoTexto, Descripcion: "Fecha de referencia YYYY-MM-DD; hoy si se omite"}
	pLimite = Param{Nombre: "limite", Tipo: TipoEntero, Descripcion: "Cuántos registros devolver (1 a 50, 10 por omisión)"}
)

func nombreParam(entidad string) []Param {
	return []Param{{Nombre: "nombre", Tipo: TipoTexto, Descripcion: "Nombre o parte del nombre del " + entidad, Requerido: true}}
}

var catalogo = []Accion{
	{Kind: KpisDia, Descripcion: "Indicadores de venta del día: totales por método de pago, ticket promedio, devoluciones, gastos y avance de meta", Params: []Param{pFecha}},
	{Kind: KpisSemana, Descripcion: "Indicadores de venta de la semana (lunes a domingo) que contiene la fecha", Params: []Param{pFecha}},
	{Kind: KpisMes, Descripcion: "Indicadores de venta del mes calendario que contiene la fecha", Params: []Param{pFecha}},
	{Kind: PrediccionVentas, Descripcion: "Pronóstico de ventas para los próximos días con base en el promedio de los últimos 30 días", Params: []Param{
		{Nombre: "dias", Tipo: TipoEntero, Descripcion: "Días a pronosticar", Requerido: true},
	}},
	{Kind: TopProductosUltimoMes, Descripcion: "Productos más vendidos por cantidad en los últimos 30 días", Params: []Param{pLimite}},
	{Kind: TopClientesUltimoMes, Descripcion: "Clientes que más compraron por monto en los últimos 30 días", Params: []Param{pLimite}},
	{Kind: ProductosBajoStock, Descripcion: "Productos activos con existencia igual o menor a su mínimo"},
	{Kind: ResumenCaja, Descripcion: "Efectivo esperado en caja desde el último corte: fondos, ventas en efectivo, retiros y gastos"},
	{Kind: RegistrarVenta, Descripcion: "Registra la venta de un producto", Escritura: true, Params: []Param{
		{Nombre: "producto", Tipo: TipoTexto, Descripcion: "Nombre del producto", Requerido: true},
		{Nombre: "cantidad", Tipo: TipoEntero, Descripcion: "Piezas vendidas", Requerido: true},
		{Nombre: "metodo_pago", Tipo: TipoTexto, Descripcion: "Método de pago, efectivo si se omite", Enum: metodosPago},
		{Nombre: "cliente", Tipo: TipoTexto, Descripcion: "Nombre del cliente, público en general si se omite"},
		{Nombre: "descuento", Tipo: TipoNumero, Descripcion: "Descuento en pesos sobre la línea"},
	}},
	{Kind: RegistrarCompra, Descripcion: "Registra una compra de mercancía a un proveedor; sube la existencia y actualiza el costo", Escritura: true, Params: []Param{
		{Nombre: "proveedor", Tipo: TipoTexto, Descripcion: "Nombre del proveedor", Requerido: true},
		{Nombre: "producto", Tipo: TipoTexto, Descripcion: "Nombre del producto", Requerido: true},
		{Nombre: "cantidad", Tipo: TipoEntero, Descripcion: "Piezas compradas", Requerido: true},
		{Nombre: "costo_unitario", Tipo: TipoNumero, Descripcion: "Costo por pieza", Requerido: true},
	}},
	{Kind: RegistrarGasto, Descripcion: "Registra un gasto operativo pagado de la caja", Escritura: true, Params: []Param{
		{Nombre: "descripcion", Tipo: TipoTexto, Descripcion: "Concepto del gasto", Requerido: true},
		{Nombre: "monto", Tipo: TipoNumero, Descripcion: "Monto en pesos", Requerido: true},
	}},
	{Kind: RegistrarRetiroCaja, Descripcion: "Retira efectivo de la caja", Escritura: true, Params: movimientoParams},
	{Kind: RegistrarFondoCaja, Descripcion: "Ingresa efectivo a la caja como fondo", Escritura: true, Params: movimientoParams},
	{Kind: RealizarCorteCaja, Descripcion: "Hace el corte de caja con el efectivo contado", Escritura: true, Params: []Param{
		{Nombre: "monto_declarado", Tipo: TipoNumero, Descripcion: "Efectivo contado en caja", Requerido: true},
		{Nombre: "observaciones", Tipo: TipoTexto, Descripcion: "Notas del corte"},
	}},
	{Kind: CrearCliente, Descripcion: "Da de alta un cliente", Escritura: true, Params: []Param{
		{Nombre: "nombre", Tipo: TipoTexto, Descripcion: "Nombre completo", Requerido: true},
		{Nombre: "telefono", Tipo: TipoTexto, Descripcion: "Teléfono"},
		{Nombre: "email", Tipo: TipoTexto, Descripcion: "Correo electrónico"},
		{Nombre: "rfc", Tipo: TipoTexto, Descripcion: "RFC"},
	}},
	{Kind: ActivarCliente, Descripcion: "Reactiva un cliente dado de baja", Escritura: true, Params: nombreParam("cliente")},
	{Kind: DesactivarCliente, Descripcion: "Da de baja un cliente", Escritura: true, Params: nombreParam("cliente")},
	{Kind: CrearProveedor, Descripcion: "Da de alta un proveedor", Escritura: true, Params: []Param{
		{Nombre: "nombre", Tipo: TipoTexto, Descripcion: "Razón social o nombre comercial", Requerido: true},
		{Nombre: "contacto", Tipo: TipoTexto, Descripcion: "Persona de contacto"},
		{Nombre: "telefono", Tipo: TipoTexto, Descripcion: "Teléfono"},
		{Nombre: "email", Tipo: TipoTexto, Descripcion: "Correo electrónico"},
		{Nombre: "rfc", Tipo: TipoTexto, Descripcion: "RFC"},
	}},
	{Kind: ActivarProveedor, Descripcion: "Reactiva un proveedor dado de baja", Escritura: true, Params: nombreParam("proveedor")},
	{Kind: DesactivarProveedor, Descripcion: "Da de baja un proveedor", Escritura: true, Params: nombreParam("proveedor")},
	{Kind: CrearProducto, Descripcion: "Da de alta un producto", Escritura: true, Params: []Param{
		{Nombre: "nombre", Tipo: TipoTexto, Descripcion: "Nombre del producto", Requerido: true},
		{Nombre: "precio", Tipo: TipoNumero, Descripcion: "Precio de venta", Requerido: true},
		{Nombre: "costo", Tipo: TipoNumero, Descripcion: "Costo de compra"},
		{Nombre: "stock", Tipo: TipoEntero, Descripcion: "Existencia inicial"},
		{Nombre: "stock_minimo", Tipo: TipoEntero, Descripcion: "Existencia mínima antes de reordenar"},
		{Nombre: "codigo_barras", Tipo: TipoTexto, Descripcion: "Código de barras"},
	}},
	{Kind: ActualizarPrecioProducto, Descripcion: "Cambia el precio de venta de un producto", Escritura: true, Params: []Param{
		{Nombre: "producto", Tipo: TipoTexto, Descripcion: "Nombre del producto", Requerido: true},
		{Nombre: "precio", Tipo: TipoNumero, Descripcion: "Nuevo precio", Requerido: true},
	}},
	{Kind: ActivarProducto, Descripcion: "Reactiva un producto dado de baja", Escritura: true, Params: nombreParam("producto")},
	{Kind: DesactivarProducto, Descripcion: "Da de baja un producto", Escritura: true, Params: nombreParam("producto")},
	{Kind: ActivarEmpleado, Descripcion: "Reactiva un empleado por nombre o usuario", Escritura: true, Params: nombreParam("empleado")},
	{Kind: DesactivarEmpleado, Descripcion: "Da de baja un empleado por nombre o usuario", Escritura: true, Params: nombreParam("empleado")},
	{Kind: CrearTicketSoporte, Descripcion: "Abre un ticket de soporte interno", Escritura: true, Params: []Param{
		{Nombre: "titulo", Tipo: TipoTexto, Descripcion: "Resumen del problema", Requerido: true},
		{Nombre: "descripcion", Tipo: TipoTexto, Descripcion: "Detalle"},
		{Nombre: "prioridad", Tipo: TipoTexto, Descripcion: "Prioridad, media si se omite", Enum: []string{"baja", "media", "alta"}},
	}},
	{Kind: CerrarTicketSoporte, Descripcion: "Cierra un ticket de soporte por folio", Escritura: true, Params: []Param{
		{Nombre: "folio", Tipo: TipoEntero, Descripcion: "Folio del ticket", Requerido: true},
	}},
}

var movimientoParams = []Param{
	{Nombre: "monto", Tipo: TipoNumero, Descripcion: "Monto en pesos", Requerido: true},
	{Nombre: "motivo", Tipo: TipoTexto, Descripcion: "Motivo del movimiento"},
}

// Catalogo returns the action catalog in a stable order.
func Catalogo() []Accion { return slices.Clone(catalogo) }

// BuscarAccion returns the catalog entry of kind.
func BuscarAccion(kind ActionKind) (Accion, bool) {
	i := slices.IndexFunc(catalogo, func(a Accion) bool { return a.Kind == kind })
	if i < 0 {
		return Accion{}, false
	}
	return catalogo[i], true
}
