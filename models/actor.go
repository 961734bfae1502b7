package models

// ActorRole - роль пользователя, известная сервису авторизации кампуса.
type ActorRole string

const (
	RoleAdmin     ActorRole = "admin"
	RoleOrganizer ActorRole = "organizer"
	RolePlayer    ActorRole = "player"
	RoleViewer    ActorRole = "viewer"
)

// Capability - требуемое право на операцию. Проверка выполняется на
// границе (middleware), до вызова сервисного слоя.
type Capability string

const (
	CapabilityManageMatches  Capability = "manage_matches"
	CapabilityPostMessages   Capability = "post_messages"
	CapabilityManageComments Capability = "manage_comments"
)

// roleCapabilities - какие права даёт каждая роль.
var roleCapabilities = map[ActorRole][]Capability{
	RoleAdmin:     {CapabilityManageMatches, CapabilityPostMessages, CapabilityManageComments},
	RoleOrganizer: {CapabilityManageMatches, CapabilityManageComments},
	RolePlayer:    {CapabilityPostMessages, CapabilityManageComments},
	RoleViewer:    {},
}

// Actor - контекст аутентифицированного пользователя из JWT.
// Campus и Registration уходят в записи аудита.
type Actor struct {
	Registration string
	Campus       string
	Roles        []ActorRole
}

// HasCapability отвечает на вопрос "даёт ли набор ролей актора право cap".
// Источник ролей остаётся внешним: сюда приходит уже разобранный список.
func (a Actor) HasCapability(cap Capability) bool {
	for _, role := range a.Roles {
		for _, c := range roleCapabilities[role] {
			if c == cap {
				return true
			}
		}
	}
	return false
}
