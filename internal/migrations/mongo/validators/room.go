package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"description",
			"price_per_night",
			"created_at",
			"booking_seq",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"price_per_night": bson.M{
				"bsonType": "decimal",
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			// bumped by every booking insert to serialize writers of one room
			"booking_seq": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
		},
	},
}

var CounterValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "seq"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"seq": bson.M{
				"bsonType": []string{"int", "long"},
			},
		},
	},
}
