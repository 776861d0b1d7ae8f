package main

import (
	"context"
	"fmt"
	"time"

	"crovpos/internal/model"
	"crovpos/internal/service"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load users or demo data",
}

var (
	seedUsername string
	seedPassword string
	seedNombre   string
	seedRol      string
	seedSucursal string

	demoDias    int
	demoSemilla uint64
)

var seedUsuarioCmd = &cobra.Command{
	Use:   "usuario",
	Short: "Create or update a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, err := conectar()
		if err != nil {
			return err
		}
		var sucursalID *uuid.UUID
		if seedSucursal != "" {
			id, err := uuid.Parse(seedSucursal)
			if err != nil {
				return fmt.Errorf("--sucursal: %w", err)
			}
			sucursalID = &id
		}
		u, err := upsertUsuario(cmd.Context(), db, seedUsername, seedPassword, seedNombre, seedRol, sucursalID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "usuario %q (%s) listo\n", u.Username, u.Rol)
		return nil
	},
}

var seedDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Create a demo branch with catalog, customers and sales history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, err := conectar()
		if err != nil {
			return err
		}
		loc, err := time.LoadLocation(cfg.DefaultTimezone)
		if err != nil {
			loc = time.UTC
		}
		d := generarDemo(gofakeit.New(demoSemilla), time.Now().In(loc), demoDias)
		if err := guardarDemo(cmd.Context(), db, d); err != nil {
			return err
		}
		if _, err := upsertUsuario(cmd.Context(), db, seedUsername, seedPassword, seedNombre, model.RolGerente, &d.Sucursal.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sucursal %s: %d productos, %d clientes, %d ventas; gerente %q\n",
			d.Sucursal.ID, len(d.Productos), len(d.Clientes), len(d.Ventas), seedUsername)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{seedUsuarioCmd, seedDemoCmd} {
		c.Flags().StringVar(&seedUsername, "username", "gerente@crov.mx", "login name")
		c.Flags().StringVar(&seedPassword, "password", "crov2025", "password")
		c.Flags().StringVar(&seedNombre, "nombre", "Gerente Demo", "display name")
	}
	seedUsuarioCmd.Flags().StringVar(&seedRol, "rol", model.RolAdministrador, "cajero | supervisor | gerente | administrador")
	seedUsuarioCmd.Flags().StringVar(&seedSucursal, "sucursal", "", "branch id (empty: all branches)")
	seedDemoCmd.Flags().IntVar(&demoDias, "dias", 30, "days of sales history")
	seedDemoCmd.Flags().Uint64Var(&demoSemilla, "semilla", 0, "random seed (0: random)")
	seedCmd.AddCommand(seedUsuarioCmd, seedDemoCmd)
}

func upsertUsuario(ctx context.Context, db *gorm.DB, username, password, nombre, rol string, sucursalID *uuid.UUID) (*model.Usuario, error) {
	switch rol {
	case model.RolCajero, model.RolSupervisor, model.RolGerente, model.RolAdministrador:
	default:
		return nil, fmt.Errorf("rol %q desconocido", rol)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.Usuario{
		Username:     username,
		Nombre:       nombre,
		PasswordHash: string(hash),
		Rol:          rol,
		SucursalID:   sucursalID,
		Activo:       true,
	}
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "nombre", "rol", "sucursal_id", "activo"}),
	}).Create(u).Error
	return u, err
}

// demo is one generated branch with its history.
type demo struct {
	Sucursal    model.Sucursal
	Proveedores []model.Proveedor
	Productos   []model.Producto
	Clientes    []model.Cliente
	Ventas      []model.Venta
	Gastos      []model.Gasto
	Movimientos []model.MovimientoCaja
}

// generarDemo builds dias days of activity ending on the day of hoy.
func generarDemo(f *gofakeit.Faker, hoy time.Time, dias int) *demo {
	loc := hoy.Location()
	d := &demo{Sucursal: model.Sucursal{ID: uuid.New(), Nombre: "Sucursal " + f.City(), Activo: true}}
	dir := f.Street()
	d.Sucursal.Direccion = &dir

	for i := 0; i < 3; i++ {
		tel, mail := f.Phone(), f.Email()
		d.Proveedores = append(d.Proveedores, model.Proveedor{
			ID: uuid.New(), SucursalID: d.Sucursal.ID, Nombre: f.Company(),
			Telefono: &tel, Email: &mail, Activo: true,
		})
	}
	for i := 0; i < 20; i++ {
		codigo := f.DigitN(13)
		precio := decimal.NewFromFloat(f.Price(10, 500)).Round(2)
		prov := d.Proveedores[i%len(d.Proveedores)].ID
		d.Productos = append(d.Productos, model.Producto{
			ID: uuid.New(), SucursalID: d.Sucursal.ID, CodigoBarras: &codigo,
			Nombre: f.ProductName(), Precio: precio, Costo: precio.Mul(decimal.NewFromFloat(0.6)).Round(2),
			Stock: f.Number(0, 200), StockMinimo: 10, ProveedorID: &prov, Activo: true,
		})
	}
	for i := 0; i < 10; i++ {
		tel := f.Phone()
		d.Clientes = append(d.Clientes, model.Cliente{
			ID: uuid.New(), SucursalID: d.Sucursal.ID, Nombre: f.Name(), Telefono: &tel, Activo: true,
		})
	}

	ticket := 0
	inicio := time.Date(hoy.Year(), hoy.Month(), hoy.Day()-dias+1, 0, 0, 0, 0, loc)
	for dia := 0; dia < dias; dia++ {
		fecha := inicio.AddDate(0, 0, dia)
		d.Movimientos = append(d.Movimientos, model.MovimientoCaja{
			ID: uuid.New(), SucursalID: d.Sucursal.ID, Tipo: model.MovimientoFondo,
			Monto: decimal.NewFromInt(1000), Motivo: "fondo inicial", Fecha: fecha.Add(8 * time.Hour),
		})
		for n := f.Number(3, 12); n > 0; n-- {
			ticket++
			d.Ventas = append(d.Ventas, d.venta(f, ticket, fecha.Add(time.Duration(f.Number(9*60, 20*60))*time.Minute)))
		}
		if f.Number(0, 2) == 0 {
			d.Gastos = append(d.Gastos, model.Gasto{
				ID: uuid.New(), SucursalID: d.Sucursal.ID, Descripcion: f.RandomString([]string{"Luz", "Limpieza", "Papeleria", "Transporte"}),
				Monto: decimal.NewFromFloat(f.Price(50, 800)).Round(2), Fecha: fecha.Add(18 * time.Hour),
			})
		}
	}
	return d
}

func (d *demo) venta(f *gofakeit.Faker, ticket int, fecha time.Time) model.Venta {
	v := model.Venta{
		ID: uuid.New(), SucursalID: d.Sucursal.ID, NumeroTicket: ticket, Fecha: fecha,
		Estado: model.EstadoVentaCompletada,
	}
	if f.Number(0, 2) == 0 {
		v.ClienteID = &d.Clientes[f.Number(0, len(d.Clientes)-1)].ID
	}
	for n := f.Number(1, 4); n > 0; n-- {
		p := d.Productos[f.Number(0, len(d.Productos)-1)]
		cant := f.Number(1, 3)
		sub := p.Precio.Mul(decimal.NewFromInt(int64(cant)))
		v.Items = append(v.Items, model.VentaDetalle{
			ID: uuid.New(), VentaID: v.ID, ProductoID: p.ID, Cantidad: cant, PrecioUnitario: p.Precio, Subtotal: sub,
		})
		v.NumeroArticulos += cant
		v.Subtotal = v.Subtotal.Add(sub)
	}
	v.Total = v.Subtotal
	v.AsignarPago(f.RandomString([]string{model.MetodoEfectivo, model.MetodoEfectivo, model.MetodoTarjeta, model.MetodoTransferencia}), v.Total)
	return v
}

func guardarDemo(ctx context.Context, db *gorm.DB, d *demo) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&d.Sucursal).Error; err != nil {
			return err
		}
		for _, rows := range []any{&d.Proveedores, &d.Productos, &d.Clientes, &d.Ventas, &d.Gastos, &d.Movimientos} {
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
