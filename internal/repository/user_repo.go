package repository

import (
	"context"

	"github.com/botivate/coupon-service/internal/models"
	"github.com/botivate/coupon-service/pkg/sheets"
)

// Login sheet columns.
const (
	colSerial = iota // A
	colName          // B
	colLoginID       // C
	colPassword      // D
	colRole          // E

	userRowWidth = 5
)

// UserRepo is the typed repository over the Login sheet.
type UserRepo struct {
	client *sheets.Client
	sheet  string
}

func NewUserRepo(client *sheets.Client, sheet string) *UserRepo {
	return &UserRepo{client: client, sheet: sheet}
}

func (r *UserRepo) FetchAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.client.Fetch(ctx, r.sheet)
	if err != nil {
		return nil, err
	}

	var users []models.User
	for i, row := range rows {
		if i == 0 {
			continue
		}
		users = append(users, models.User{
			SerialNo: cell(row, colSerial),
			Name:     cell(row, colName),
			LoginID:  cell(row, colLoginID),
			Password: cell(row, colPassword),
			Role:     cell(row, colRole),
			RowIndex: i + 1,
		})
	}
	return users, nil
}

func (r *UserRepo) Insert(ctx context.Context, u models.User) error {
	row := make([]string, userRowWidth)
	row[colSerial] = u.SerialNo
	row[colName] = u.Name
	row[colLoginID] = u.LoginID
	row[colPassword] = u.Password
	row[colRole] = u.Role
	return r.client.Insert(ctx, r.sheet, row)
}
