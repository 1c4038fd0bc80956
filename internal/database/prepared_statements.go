package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes fréquentes
	stmtGetUserByEmail    *gocql.Query
	stmtGetUserByNickname *gocql.Query
	stmtGetUserByID       *gocql.Query
	stmtInsertUser        *gocql.Query
	stmtInsertUserByEmail *gocql.Query
	stmtUpdateUser        *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		session, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements: %v", err)
			return
		}

		// Requête pour récupérer user_id par email
		stmtGetUserByEmail = session.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		// Requête pour récupérer user_id par pseudo (unicité des pseudos)
		stmtGetUserByNickname = session.Query("SELECT user_id FROM users_by_nickname WHERE nickname = ?")

		// Requête pour récupérer un utilisateur par ID
		stmtGetUserByID = session.Query(`SELECT email, password, name, nickname, provider, provider_id, photo_url
			FROM users WHERE user_id = ?`)

		// Requête pour insérer un utilisateur
		stmtInsertUser = session.Query(`INSERT INTO users (user_id, email, password, name, nickname, provider, provider_id, photo_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		// Requête pour insérer dans users_by_email
		stmtInsertUserByEmail = session.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)")

		// Requête pour mettre à jour un utilisateur
		stmtUpdateUser = session.Query("UPDATE users SET name = ?, nickname = ?, photo_url = ?, updated_at = ? WHERE user_id = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByNickname() *gocql.Query {
	return stmtGetUserByNickname
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedInsertUserByEmail() *gocql.Query {
	return stmtInsertUserByEmail
}

func GetPreparedUpdateUser() *gocql.Query {
	return stmtUpdateUser
}
