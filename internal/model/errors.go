package model

import "errors"

var (
	// ErrStationNotFound возвращается, если станция с указанным идентификатором не найдена.
	ErrStationNotFound = errors.New("station not found")
	// ErrBookingNotFound возвращается, если бронирование не найдено.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists возвращается при регистрации пользователя с уже занятым email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidInput возвращается при некорректных входных данных.
	ErrInvalidInput = errors.New("invalid input")
)
