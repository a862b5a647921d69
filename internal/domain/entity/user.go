package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото с камеры
	StateProcessing    UserState = "processing"     // Преобразование изображения
)

// User представляет пользователя бота
type User struct {
	ID     int64            // Telegram User ID
	ChatID int64            // Telegram Chat ID
	State  UserState        // Текущее состояние пользователя
	Params CameraParameters // Параметры камеры, с которыми преобразуются его фото
}

// NewUser создаёт нового пользователя с начальным состоянием и параметрами по умолчанию
func NewUser(userID, chatID int64, defaults CameraParameters) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
		Params: defaults,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SetParams заменяет параметры камеры после проверки
func (u *User) SetParams(params CameraParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}
	u.Params = params
	return nil
}
